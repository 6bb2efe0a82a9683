// Package mlog handles the log and it's handlers
package mlog

import (
	"sync"

	"github.com/bakape/forum/config"
	"github.com/bakape/forum/util"
	"github.com/go-playground/log"
	"github.com/go-playground/log/handlers/console"
	"github.com/go-playground/log/handlers/email"
	"gopkg.in/gomail.v2"
)

type handler uint8

const (
	// DefaultTimeFormat is the default time format
	DefaultTimeFormat = "2006-01-02 15:04:05"

	// Console is the console handler
	Console handler = iota
	// Email is the email handler for error level entries
	Email
)

var (
	rw sync.Mutex

	// Ensure each handler is only registered once
	consoleOnce, emailOnce sync.Once

	// ConsoleHandler is the console handler
	ConsoleHandler *console.Console

	// Email handler
	eLog *email.Email
)

// Init initializes the logger with the passed handlers
func Init(handlers ...handler) {
	rw.Lock()
	defer rw.Unlock()

	for _, h := range handlers {
		switch h {
		case Console:
			consoleOnce.Do(func() {
				ConsoleHandler = console.New(true)
				ConsoleHandler.SetTimestampFormat(DefaultTimeFormat)
				log.AddHandler(ConsoleHandler, log.AllLevels...)
			})
		case Email:
			if eLog == nil {
				conf := config.Get()
				eLog = email.New(conf.EmailErrSub, int(conf.EmailErrPort),
					conf.EmailErrMail, conf.EmailErrPass, conf.EmailErrMail,
					[]string{conf.EmailErrMail})
				util.Hook("config.changed", func() error {
					Update()
					return nil
				})
			}
			setEmailHandler()
		default:
			log.Fatal("invalid mlog handler: ", h)
		}
	}
}

func setEmailHandler() {
	conf := config.Get()
	eLog.SetEmailConfig(conf.EmailErrSub, int(conf.EmailErrPort),
		conf.EmailErrMail, conf.EmailErrPass, conf.EmailErrMail,
		[]string{conf.EmailErrMail})
	eLog.SetEnabled(conf.EmailErr)
	eLog.SetFormatFunc(format)

	if conf.EmailErr {
		emailOnce.Do(func() {
			log.AddHandler(eLog, log.ErrorLevel, log.PanicLevel, log.AlertLevel,
				log.FatalLevel)
		})
	}
}

// Update applies changed site configurations to the e-mail handler
func Update() {
	rw.Lock()
	defer rw.Unlock()

	if eLog != nil {
		setEmailHandler()
	}
}

func format(e *email.Email) email.Formatter {
	return func(entry log.Entry) *gomail.Message {
		addr := config.Get().EmailErrMail
		msg := gomail.NewMessage()
		msg.SetHeader("From", addr)
		msg.SetHeader("To", addr)
		msg.SetHeader("Subject", "forum error")
		msg.SetBody("text/plain", entry.Message)
		return msg
	}
}
