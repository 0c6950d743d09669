// Package config holds the parameters of a test run, loaded from a YAML site file and
// overridden by command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/auth"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/opt"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/testinfo"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSiteName  = "default"
	DefaultOutputDir = "report"
	AllRequirements  = "ALL"
)

var (
	ErrMissingParameter = errors.New("missing required parameter")
	ErrMalformedURI     = errors.New("malformed URI")
)

// UserIdentity is one of the two users the tests act as.
type UserIdentity struct {
	WebID      string            `yaml:"webid"`
	Name       string            `yaml:"name"`
	Password   opt.Maybe[string] `yaml:"password"`
	AuthHeader opt.Maybe[string] `yaml:"auth-header"`
}

// IsConfigured returns true if anything at all was set for the user.
func (u UserIdentity) IsConfigured() bool {
	return u.WebID != "" || u.Name != "" || u.Password.IsDefined() || u.AuthHeader.IsDefined()
}

// AuthUser converts the identity to what an authenticator consumes.
func (u UserIdentity) AuthUser() auth.User {
	return auth.User{WebID: u.WebID, Name: u.Name, Password: u.Password, AuthHeader: u.AuthHeader}
}

func (u UserIdentity) merge(o UserIdentity) UserIdentity {
	if o.WebID != "" {
		u.WebID = o.WebID
	}
	if o.Name != "" {
		u.Name = o.Name
	}
	u.Password = o.Password.Or(u.Password)
	u.AuthHeader = o.AuthHeader.Or(u.AuthHeader)
	return u
}

// TestParameters is everything a run is configured with. It is built once at startup and
// passed explicitly to whatever needs it.
type TestParameters struct {
	RootURL        string       `yaml:"root-url"`
	RootController UserIdentity `yaml:"root-controller-user"`
	Permissionless UserIdentity `yaml:"permissionless-user"`

	BrokerURL string `yaml:"broker-url"`
	Queue     string `yaml:"queue-name"`
	Topic     string `yaml:"topic-name"`

	// Requirements is ALL or a comma-separated list of MUST, SHOULD and MAY.
	Requirements string `yaml:"requirements"`
	// SuiteFile names a YAML file restricting which classes and tests run.
	SuiteFile string   `yaml:"testngxml"`
	Run       []string `yaml:"run"`
	Skip      []string `yaml:"skip"`

	AuthClass   string `yaml:"auth-class"`
	BearerToken string `yaml:"bearer-token"`

	OutputDir string `yaml:"output-dir"`
	JUnitFile string `yaml:"junit"`
	Debug     bool   `yaml:"debug"`
	DebugAll  bool   `yaml:"debug-all"`
}

// LoadSiteFile reads a YAML file mapping site names to parameters and returns the named site.
func LoadSiteFile(path, siteName string) (TestParameters, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return TestParameters{}, fmt.Errorf("reading config file: %w", err)
	}
	return ParseSites(data, siteName)
}

// ParseSites is LoadSiteFile for data already in memory.
func ParseSites(data []byte, siteName string) (TestParameters, error) {
	var sites map[string]TestParameters
	if err := yaml.Unmarshal(data, &sites); err != nil {
		return TestParameters{}, fmt.Errorf("malformed config file: %w", err)
	}
	if siteName == "" {
		siteName = DefaultSiteName
	}
	site, ok := sites[siteName]
	if !ok {
		return TestParameters{}, fmt.Errorf("config file has no site named %q", siteName)
	}
	return site, nil
}

// Merge returns p with every field that is set in overrides replaced.
func (p TestParameters) Merge(overrides TestParameters) TestParameters {
	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	str(&p.RootURL, overrides.RootURL)
	p.RootController = p.RootController.merge(overrides.RootController)
	p.Permissionless = p.Permissionless.merge(overrides.Permissionless)
	str(&p.BrokerURL, overrides.BrokerURL)
	str(&p.Queue, overrides.Queue)
	str(&p.Topic, overrides.Topic)
	str(&p.Requirements, overrides.Requirements)
	str(&p.SuiteFile, overrides.SuiteFile)
	str(&p.AuthClass, overrides.AuthClass)
	str(&p.BearerToken, overrides.BearerToken)
	str(&p.OutputDir, overrides.OutputDir)
	str(&p.JUnitFile, overrides.JUnitFile)
	if len(overrides.Run) != 0 {
		p.Run = overrides.Run
	}
	if len(overrides.Skip) != 0 {
		p.Skip = overrides.Skip
	}
	p.Debug = p.Debug || overrides.Debug
	p.DebugAll = p.DebugAll || overrides.DebugAll
	return p
}

// WithDefaults fills in values that have a default.
func (p TestParameters) WithDefaults() TestParameters {
	if p.OutputDir == "" {
		p.OutputDir = DefaultOutputDir
	}
	if p.Requirements == "" {
		p.Requirements = AllRequirements
	}
	if !strings.HasSuffix(p.RootURL, "/") && p.RootURL != "" {
		p.RootURL += "/"
	}
	return p
}

// Validate reports the first configuration problem found.
func (p TestParameters) Validate() error {
	if p.RootURL == "" {
		return fmt.Errorf("%w: root URL", ErrMissingParameter)
	}
	if err := requireAbsoluteURI("root URL", p.RootURL); err != nil {
		return err
	}
	if !p.RootController.IsConfigured() {
		return fmt.Errorf("%w: root controller user", ErrMissingParameter)
	}
	if !p.RootController.AuthHeader.IsDefined() && p.RootController.Name == "" {
		return fmt.Errorf("%w: root controller user name or authorization header", ErrMissingParameter)
	}
	if err := validateWebID("root controller", p.RootController); err != nil {
		return err
	}
	if err := validateWebID("permissionless user", p.Permissionless); err != nil {
		return err
	}
	if p.BrokerURL != "" && p.Queue == "" && p.Topic == "" {
		return fmt.Errorf("%w: queue or topic name (required with a broker URL)", ErrMissingParameter)
	}
	if _, err := p.RequirementLevels(); err != nil {
		return err
	}
	return nil
}

// RequirementLevels parses Requirements. An empty value or ALL selects every level.
func (p TestParameters) RequirementLevels() ([]testinfo.RequirementLevel, error) {
	if p.Requirements == "" || strings.EqualFold(strings.TrimSpace(p.Requirements), AllRequirements) {
		return append([]testinfo.RequirementLevel(nil), testinfo.AllRequirementLevels...), nil
	}
	var ret []testinfo.RequirementLevel
	for _, s := range strings.Split(p.Requirements, ",") {
		l, err := testinfo.ParseRequirementLevel(s)
		if err != nil {
			return nil, fmt.Errorf("requirements must be ALL or a list of MUST, SHOULD, MAY: %w", err)
		}
		ret = append(ret, l)
	}
	return ret, nil
}

func validateWebID(label string, u UserIdentity) error {
	if u.WebID == "" {
		return nil
	}
	return requireAbsoluteURI(label+" WebID", u.WebID)
}

func requireAbsoluteURI(label, s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %s", ErrMalformedURI, label, s, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %s %q is not an absolute URI", ErrMalformedURI, label, s)
	}
	return nil
}
