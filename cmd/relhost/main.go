// Command relhost issues SQL against a relhost-backed database directly,
// serves it over the rpcserver protocol, or speaks that protocol as a
// client against a running server.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/relhost/relhost/dbutil"
	"github.com/relhost/relhost/rpcserver"
)

var version = "dev"

type options struct {
	Source  string `short:"s" long:"source" description:"database source path" default:":memory:"`
	Command string `short:"c" long:"command" description:"SQL statement to run in direct mode"`
	File    string `short:"f" long:"file" description:"read SQL from file instead of --command"`
	Output  string `short:"o" long:"output" description:"write output to file instead of stdout"`

	Serve bool   `long:"serve" description:"run as an rpcserver instead of executing a single statement"`
	Port  int    `long:"port" description:"rpcserver port" default:"13337"`
	Bind  string `long:"bind" description:"rpcserver bind address" default:"127.0.0.1"`

	Client string `long:"client" description:"run as an rpcserver client against host:port instead of direct mode"`

	Version bool `long:"version" description:"print version and exit"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	if opts.Version {
		fmt.Println("relhost", version)
		return
	}

	if err := run(opts); err != nil {
		logrus.WithError(err).Error("relhost: failed")
		os.Exit(1)
	}
}

func run(opts options) error {
	switch {
	case opts.Client != "":
		return runClient(opts)
	case opts.Serve:
		return runServe(opts)
	default:
		return runDirect(opts)
	}
}

func runDirect(opts options) error {
	db, err := dbutil.Open(opts.Source)
	if err != nil {
		return err
	}
	defer db.Close()

	sql, err := readSQL(opts)
	if err != nil {
		return err
	}

	out := os.Stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("relhost: create %s: %w", opts.Output, err)
		}
		defer f.Close()
		out = f
	}

	result, err := db.Query(sql)
	if err != nil {
		if _, execErr := db.Exec(sql); execErr != nil {
			return execErr
		}
		return nil
	}
	printResult(out, result)
	return nil
}

func readSQL(opts options) (string, error) {
	if opts.File != "" {
		b, err := os.ReadFile(opts.File)
		if err != nil {
			return "", fmt.Errorf("relhost: read %s: %w", opts.File, err)
		}
		return string(b), nil
	}
	if opts.Command == "" {
		return "", fmt.Errorf("relhost: one of --command or --file is required in direct mode")
	}
	return opts.Command, nil
}

func printResult(out *os.File, result dbutil.Result) {
	fmt.Fprintln(out, joinTab(result.Columns))
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%v", v)
		}
		fmt.Fprintln(out, joinTab(cells))
	}
}

func joinTab(cells []string) string {
	s := ""
	for i, c := range cells {
		if i > 0 {
			s += "\t"
		}
		s += c
	}
	return s
}

func runServe(opts options) error {
	db, err := dbutil.Open(opts.Source)
	if err != nil {
		return err
	}
	defer db.Close()

	cfg := rpcserver.DefaultServerConfig()
	cfg.Port = opts.Port
	cfg.BindAddress = opts.Bind
	srv, err := rpcserver.New(cfg, db)
	if err != nil {
		return err
	}
	return srv.Serve()
}

func runClient(opts options) error {
	client, err := rpcserver.Dial(opts.Client, "", 0)
	if err != nil {
		return err
	}
	defer client.Close()

	sql, err := readSQL(opts)
	if err != nil {
		return err
	}
	resp, err := client.Query(sql)
	if err != nil {
		return err
	}
	fmt.Println(joinTab(resp.Columns))
	for _, row := range resp.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%v", v)
		}
		fmt.Println(joinTab(cells))
	}
	return nil
}
