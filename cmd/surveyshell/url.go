package main

import (
	"os"
	"strings"

	"github.com/jllopis/surveyshell/pkg/envurl"
)

func (a *app) runURL(args []string) error {
	host := ""
	if len(args) > 0 {
		if v, ok := strings.CutPrefix(args[0], "--host="); ok {
			host, args = v, args[1:]
		} else if args[0] == "--host" {
			if len(args) < 2 {
				return NewInvalidArgumentError("--host", "missing value for --host")
			}
			host, args = args[1], args[2:]
		}
	}
	if len(args) == 0 {
		return NewInvalidArgumentError("url", "usage: surveyshell url [--host <name>] <path> [key=value...]")
	}

	query := make(map[string]string, len(args)-1)
	for _, kv := range args[1:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return NewInvalidArgumentError(kv, "query parameters must be key=value")
		}
		query[key] = value
	}

	env, err := a.environment(host)
	if err != nil {
		return err
	}
	builder, err := envurl.NewBuilder(env, a.cfg.URLs.Bases)
	if err != nil {
		return err
	}
	u, err := builder.Build(args[0], query)
	if err != nil {
		return err
	}
	if a.flags.JSON {
		return a.printJSON(map[string]string{"environment": string(env), "url": u})
	}
	_, err = a.out.Write([]byte(u + "\n"))
	return err
}

// environment prefers urls.environment, then the host passed with --host,
// then the machine's host name.
func (a *app) environment(host string) (envurl.Environment, error) {
	if a.cfg.URLs.Environment != "" && host == "" {
		return envurl.ParseEnvironment(a.cfg.URLs.Environment)
	}
	if host == "" {
		host, _ = os.Hostname()
	}
	return envurl.Detect(host), nil
}
