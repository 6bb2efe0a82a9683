package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/ErikDubbelboer/gspt"
	"github.com/bakape/forum/common"
	"github.com/bakape/forum/config"
	"github.com/bakape/forum/db"
	"github.com/bakape/forum/imager/assets"
	"github.com/bakape/forum/markup"
	"github.com/bakape/forum/mlog"
	"github.com/bakape/forum/scraper"
	"github.com/bakape/forum/thread"
	"github.com/bakape/forum/util"
	"github.com/go-playground/log"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

func main() {
	err := func() (err error) {
		// Optional
		_ = godotenv.Load(".env")

		p := flags.NewParser(&config.Server, flags.Default)
		p.Usage = "[OPTIONS] recount|participants|process|reprocess|upkeep"
		args, err := p.Parse()
		if err != nil {
			return
		}
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one job, got %d", len(args))
		}
		job := args[0]

		// Censor DB connection string, if any
		procArgs := make([]string, 0, len(os.Args))
		for i := 0; i < len(os.Args); i++ {
			arg := os.Args[i]
			// To match all of -d --d -database --database
			if strings.HasSuffix(arg, "-d") ||
				strings.HasSuffix(arg, "-database") {
				procArgs = append(procArgs, arg, "****")
				i++ // Jump to args after password
			} else {
				procArgs = append(procArgs, arg)
			}
		}
		gspt.SetProcTitle(strings.Join(procArgs, " "))

		store := assets.New()
		err = util.Waterfall(
			func() error {
				return config.Load(config.Server.Config)
			},
			func() error {
				mlog.Init(mlog.Console, mlog.Email)
				return nil
			},
			func() error {
				return util.Parallel(
					db.LoadDB,
					func() error {
						return store.CreateDirs(common.FaviconContainer)
					},
				)
			},
		)
		if err != nil {
			return
		}
		defer db.Close()

		cache, err := scraper.OpenCache(
			config.Server.CacheBackend,
			config.Server.CachePath,
			config.Server.RedisURL,
			config.Server.CacheTTL,
		)
		if err != nil {
			return
		}
		if cache != nil {
			defer cache.Close()
		}

		s := &thread.Service{
			Markup: markup.New(),
			Pages:  scraper.New(scraper.NewFetcher(), store, cache),
		}
		return run(s, job)
	}()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// Run a maintenance job until completion or SIGINT/SIGTERM
func run(s *thread.Service, job string) (err error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer cancel()

	if job == "upkeep" {
		c, err := s.StartUpkeep(ctx)
		if err != nil {
			return err
		}
		log.Info("upkeep started")
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	}

	jobs := s.Jobs()
	j, ok := jobs[job]
	if !ok {
		names := make([]string, 0, len(jobs)+1)
		for n := range jobs {
			names = append(names, n)
		}
		names = append(names, "upkeep")
		sort.Strings(names)
		return fmt.Errorf("unknown job `%s`, expected one of: %s", job,
			strings.Join(names, ", "))
	}
	return thread.RunJob(ctx, job, j)
}
