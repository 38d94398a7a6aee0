package options

import (
	"fmt"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
	"os"
	"path/filepath"
	"sigs.k8s.io/yaml"
)

const (
	flagConfig        = "config"
	flagHelp          = "help"
	flagDefaultConfig = "default-config"
)

type Optioner interface {
	AddFlags(*pflag.FlagSet)
	GetBaseOptions() *BaseOptions
}

// EnvApplier is implemented by options that read overrides from the
// environment. Environment values win over the config file and lose to flags.
type EnvApplier interface {
	ApplyEnv(lookup func(string) (string, bool))
}

type BaseOptions struct {
	ConfigFile string  `json:"-"`
	Logging    Logging `json:"logging"`
}

func NewDefaultBaseOptions() BaseOptions {
	return BaseOptions{
		Logging: NewDefaultLogging(),
	}
}

func (bo *BaseOptions) GetBaseOptions() *BaseOptions {
	return bo
}

func (bo *BaseOptions) AddBaseFlags(cmd *cobra.Command, fs *pflag.FlagSet) {
	bo.addLayeredFlags(fs)
	fs.BoolP(flagHelp, "h", false, fmt.Sprintf("help for %s", cmd.Name()))
	fs.Bool(flagDefaultConfig, false, "Print the default configuration as YAML and exit. The output is a complete starting point for a --config file.")
	setUsage(cmd, fs)
}

// addLayeredFlags binds the flags that are parsed again after the config file
// and the environment have been applied.
func (bo *BaseOptions) addLayeredFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&bo.ConfigFile, flagConfig, "c", bo.ConfigFile, "YAML file to load the configuration from, absolute or relative to the working directory. Environment variables override the file and flags override both.")
	bo.Logging.BindFlags(fs)
}

func (bo *BaseOptions) ValidateAndApply() error {
	return bo.Logging.Apply()
}

// setUsage replaces cobra's usage and help output, which would otherwise list
// the global flags instead of fs.
func setUsage(cmd *cobra.Command, fs *pflag.FlagSet) {
	const usageFmt = "Usage:\n  %s\n\nFlags:\n%s"
	cmd.SetUsageFunc(func(cmd *cobra.Command) error {
		_, _ = fmt.Fprintf(cmd.OutOrStderr(), usageFmt, cmd.UseLine(), fs.FlagUsagesWrapped(2))
		return nil
	})
	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n"+usageFmt, cmd.Long, cmd.UseLine(), fs.FlagUsagesWrapped(2))
	})
}

func PrintHelpAndExitIfRequested(cmd *cobra.Command, fs *pflag.FlagSet) {
	if requested(fs, flagHelp) {
		_ = cmd.Help()
		os.Exit(0)
	}
}

func PrintDefaultConfigAndExitIfRequested(config interface{}, fs *pflag.FlagSet) {
	if !requested(fs, flagDefaultConfig) {
		return
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		klog.ErrorS(err, "Failed to marshal default config to yaml")
		os.Exit(1)
	}
	fmt.Printf("# Default configuration, pass a modified copy with --%s.\n%s", flagConfig, data)
	os.Exit(0)
}

func requested(fs *pflag.FlagSet, name string) bool {
	v, err := fs.GetBool(name)
	if err != nil {
		klog.ErrorS(err, "Flag is not a bool", "flag", name)
		os.Exit(1)
	}
	return v
}

// ParseAndApplyConfigFile layers the config file, then the environment, then
// the flags in args over o.
func ParseAndApplyConfigFile(o Optioner, args []string) error {
	if len(o.GetBaseOptions().ConfigFile) != 0 {
		if err := parseConfigFile(o); err != nil {
			return err
		}
	}
	if env, ok := o.(EnvApplier); ok {
		env.ApplyEnv(os.LookupEnv)
	}
	return flagPrecedence(o, args)
}

func flagPrecedence(o Optioner, args []string) error {
	fs := pflag.NewFlagSet("", pflag.ContinueOnError)
	// command specific flags are not part of the options
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	o.AddFlags(fs)
	o.GetBaseOptions().addLayeredFlags(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}
	o.GetBaseOptions().Logging.sync(fs)
	return nil
}

func parseConfigFile(out Optioner) error {
	path, err := filepath.Abs(out.GetBaseOptions().ConfigFile)
	if err != nil {
		return errors.Wrap(err, "config file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		klog.ErrorS(err, "Failed to read config file", "file", path)
		return errors.Wrap(err, "config file")
	}

	if err := yaml.UnmarshalStrict(data, out); err != nil {
		klog.ErrorS(err, "Failed to unmarshal config file", "file", path)
		return errors.Wrapf(err, "config file %s", path)
	}
	return nil
}
