package main

import (
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/config"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/opt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type commandParams struct {
	configFile     string
	siteName       string
	skipFile       string
	recordFailures string
	flags          config.TestParameters
}

type userFlags struct {
	prefix     string
	password   string
	authHeader string
}

func (u *userFlags) bind(fs *pflag.FlagSet, identity *config.UserIdentity, prefix, description string) {
	u.prefix = prefix
	fs.StringVar(&identity.WebID, prefix+"-webid", "", "WebID of the "+description)
	fs.StringVar(&identity.Name, prefix+"-name", "", "user name of the "+description)
	fs.StringVar(&u.password, prefix+"-password", "", "password of the "+description)
	fs.StringVar(&u.authHeader, prefix+"-auth-header", "",
		"raw Authorization header for the "+description+", used instead of name and password")
}

// apply copies the optional values, so that an empty flag is told apart from an absent one.
func (u *userFlags) apply(fs *pflag.FlagSet, identity *config.UserIdentity) {
	if fs.Changed(u.prefix + "-password") {
		identity.Password = opt.Some(u.password)
	}
	if fs.Changed(u.prefix + "-auth-header") {
		identity.AuthHeader = opt.Some(u.authHeader)
	}
}

func newRootCommand(run func(cmd *cobra.Command, params commandParams) error) *cobra.Command {
	var params commandParams
	var root, permissionless userFlags

	cmd := &cobra.Command{
		Use:          "fcrepo-api-test-suite",
		Short:        "Tests a repository for conformance with the Fedora API specification",
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
	}
	fs := cmd.Flags()
	fs.StringVar(&params.flags.RootURL, "rooturl", "", "root URL of the repository under test")
	root.bind(fs, &params.flags.RootController, "root-controller-user", "user with full control of the repository")
	permissionless.bind(fs, &params.flags.Permissionless, "permissionless-user", "user with no granted permissions")
	fs.StringVar(&params.flags.BrokerURL, "broker-url", "", "tcp:// URL of the STOMP broker carrying notifications")
	fs.StringVar(&params.flags.Queue, "queue-name", "", "queue to listen to for notifications")
	fs.StringVar(&params.flags.Topic, "topic-name", "", "topic to listen to for notifications")
	fs.StringVar(&params.flags.SuiteFile, "testngxml", "", "YAML file listing the test classes and tests to run")
	fs.StringVar(&params.flags.Requirements, "requirements", "",
		"requirement levels to test: ALL, or a comma-separated list of MUST, SHOULD, MAY")
	fs.StringVar(&params.flags.AuthClass, "auth-class", "", "name of the authenticator to use")
	fs.StringVar(&params.flags.BearerToken, "bearer-token", "", "authenticate every user with this bearer token")
	fs.StringVar(&params.flags.OutputDir, "output-dir", "", "directory for the log and the reports (default \"report\")")
	fs.StringVar(&params.flags.JUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.StringArrayVar(&params.flags.Run, "run", nil, "regex pattern(s) to select tests to run")
	fs.StringArrayVar(&params.flags.Skip, "skip", nil, "regex pattern(s) to select tests not to run")
	fs.StringVar(&params.skipFile, "skip-from", "", "file listing tests not to run, one test ID per line")
	fs.StringVar(&params.recordFailures, "record-failures", "", "write the IDs of failed tests to this file")
	fs.BoolVar(&params.flags.Debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&params.flags.DebugAll, "debug-all", false, "enable debug logging for all tests")
	fs.StringVarP(&params.configFile, "config-file", "c", "", "YAML file of site configurations")
	fs.StringVarP(&params.siteName, "site-name", "s", "", "site to use from the config file (default \"default\")")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		root.apply(cmd.Flags(), &params.flags.RootController)
		permissionless.apply(cmd.Flags(), &params.flags.Permissionless)
		return run(cmd, params)
	}
	return cmd
}

// testParameters merges the flags over the selected site of the config file, if there is one.
func (c commandParams) testParameters() (config.TestParameters, error) {
	if c.configFile == "" {
		return c.flags, nil
	}
	site, err := config.LoadSiteFile(c.configFile, c.siteName)
	if err != nil {
		return config.TestParameters{}, err
	}
	return site.Merge(c.flags), nil
}
