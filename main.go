package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/auth"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/config"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/suite"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags.
var version = "dev" //nolint:gochecknoglobals

var errTestsFailed = errors.New("some tests failed")

func main() {
	if err := newRootCommand(run).ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, params commandParams) error {
	fmt.Printf("fcrepo-api-test-suite v%s\n", version)

	testParams, err := params.testParameters()
	if err != nil {
		return err
	}
	if params.skipFile != "" {
		if err := loadSuppressions(params.skipFile, &testParams); err != nil {
			return err
		}
	}

	authenticators := auth.NewRegistry()
	if testParams.BearerToken != "" {
		authenticators.Register("bearer", auth.BearerAuthenticator{Token: testParams.BearerToken})
	}

	driver, err := suite.NewDriver(suite.WithAuthenticators(authenticators))
	if err != nil {
		return err
	}
	if err := driver.Configure(testParams); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	driver.DescribeFilters(cmd.OutOrStdout())

	outcome, runErr := driver.Run(cmd.Context())
	if params.recordFailures != "" && runErr == nil {
		if err := recordFailures(params.recordFailures, outcome); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if !outcome.OK() {
		return errTestsFailed
	}
	return nil
}

func recordFailures(path string, outcome suite.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create failures file: %w", err)
	}
	for _, test := range outcome.Results.Failures {
		fmt.Fprintln(f, test.TestID)
	}
	return f.Close()
}

// loadSuppressions adds one skip pattern per line of the file, matching that test ID exactly.
func loadSuppressions(path string, params *config.TestParameters) error {
	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %w", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		params.Skip = append(params.Skip, "^"+strings.Join(quoteParts(line), "$/^")+"$")
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %w", err)
	}
	return nil
}

func quoteParts(id string) []string {
	parts := strings.Split(id, "/")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return parts
}
