package options

import (
	"fmt"
	"github.com/spf13/pflag"
	"k8s.io/component-base/config"
	"k8s.io/component-base/logs"
	"k8s.io/component-base/logs/registry"
	"strings"
)

const defaultVerbosity = 2

// visibleLogFlags are the klog flags shown in --help. The rest stay bound but
// hidden.
var visibleLogFlags = map[string]bool{
	"v":              true,
	"vmodule":        true,
	"logging-format": true,
}

// Logging is the logging section of a config file.
type Logging struct {
	Format    string                      `json:"format"`
	Verbosity config.VerbosityLevel       `json:"verbosity"`
	VModule   config.VModuleConfiguration `json:"vmodule,omitempty"`

	bound config.LoggingConfiguration
}

func NewDefaultLogging() Logging {
	return Logging{
		Format:    "text",
		Verbosity: defaultVerbosity,
	}
}

// Apply configures klog. Flags bound with BindFlags win over the config file
// values when they were set on the command line.
func (l *Logging) Apply() error {
	o := logs.NewOptions()
	o.Config.Format = l.Format
	o.Config.Verbosity = l.Verbosity
	o.Config.VModule = l.VModule
	return o.ValidateAndApply()
}

func (l *Logging) BindFlags(fs *pflag.FlagSet) {
	l.bound.Format = l.Format
	l.bound.Verbosity = l.Verbosity
	l.bound.VModule = l.VModule

	logsFs := pflag.NewFlagSet("", pflag.ContinueOnError)
	logs.BindLoggingFlags(&l.bound, logsFs)
	logsFs.VisitAll(func(f *pflag.Flag) {
		switch {
		case f.Name == "logging-format":
			f.Usage = fmt.Sprintf("Log format, one of %q.", strings.Join(registry.LogRegistry.List(), `", "`))
		case !visibleLogFlags[f.Name]:
			f.Hidden = true
		}
	})

	fs.AddFlagSet(logsFs)
}

// sync copies the values parsed into the bound flags back into l.
func (l *Logging) sync(fs *pflag.FlagSet) {
	if f := fs.Lookup("logging-format"); f != nil && f.Changed {
		l.Format = l.bound.Format
	}
	if f := fs.Lookup("v"); f != nil && f.Changed {
		l.Verbosity = l.bound.Verbosity
	}
	if f := fs.Lookup("vmodule"); f != nil && f.Changed {
		l.VModule = l.bound.VModule
	}
}
