package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spachava753/ekcal/caldavstore"
	"github.com/spachava753/ekcal/eventkit"
)

// rootOptions holds global flags shared by all subcommands. Empty connection
// fields fall back to the EKCAL_CALDAV_* environment variables.
type rootOptions struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
	Verbose  bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ekcal",
		Short: "Query calendars, events and reminders over CalDAV",
		Long: "ekcal lists sources, calendars, events and reminders from a CalDAV\n" +
			"account and prints them as JSON. Connection settings come from flags\n" +
			"or from the EKCAL_CALDAV_URL, EKCAL_CALDAV_USERNAME and\n" +
			"EKCAL_CALDAV_PASSWORD environment variables.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.URL, "url", "", "CalDAV server URL")
	cmd.PersistentFlags().StringVarP(&opts.Username, "username", "u", "", "CalDAV username")
	cmd.PersistentFlags().StringVar(&opts.Password, "password", "", "CalDAV password (prompted when omitted)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 0, "per-request timeout")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newSourcesCommand(opts))
	cmd.AddCommand(newCalendarsCommand(opts))
	cmd.AddCommand(newEventsCommand(opts))
	cmd.AddCommand(newRemindersCommand(opts))
	cmd.AddCommand(newShowCommand(opts))

	return cmd
}

func (o *rootOptions) logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if o.Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// openSession connects to the configured CalDAV account and returns a live
// session plus its cleanup func.
func (o *rootOptions) openSession() (*eventkit.Session, func(), error) {
	cfg, err := caldavstore.ConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}
	if o.URL != "" {
		cfg.URL = o.URL
	}
	if o.Username != "" {
		cfg.Username = o.Username
	}
	if o.Password != "" {
		cfg.Password = o.Password
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if cfg.Password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "CalDAV password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, nil, err
		}
		cfg.Password = string(raw)
	}

	log := o.logger()
	store, err := caldavstore.Open(cfg, caldavstore.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	session := eventkit.Open(store, eventkit.WithLogger(log))
	return session, session.Close, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseTime accepts a date or an RFC 3339 timestamp.
func parseTime(value string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use YYYY-MM-DD or RFC 3339", value)
	}
	return t, nil
}
