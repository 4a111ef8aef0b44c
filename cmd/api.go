package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dovermoor/cinefetch/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the catalog and prints the response.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	useJSON := cmd.Bool("json")

	if path == "" {
		return fmt.Errorf("%w: catalog path argument is required (e.g. /genre/movie/list)", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		if resp.IsJSON {
			return r.writeJSON(resp.JSONData, false)
		}
		r.output.Write(resp.Body)
		r.output.Write([]byte("\n"))
		return nil
	}

	r.writePlain("Status: %d\n", resp.StatusCode)

	headers := make([]string, 0, len(resp.Headers))
	for name := range resp.Headers {
		headers = append(headers, name)
	}
	sort.Strings(headers)
	for _, name := range headers {
		r.writePlain("%s: %s\n", name, strings.Join(resp.Headers.Values(name), ", "))
	}
	r.writePlain("\n")

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// apiCommand handles direct catalog calls for debugging.
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct catalog API calls",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET an arbitrary catalog path and print the response",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the body as raw JSON only",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}
