// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path"
	"runtime"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the settings of the value-flow analysis and of the tools running it.
// If some field is not defined in the config file, it keeps its default value from NewDefault.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// valuesReportFile is a file name in ReportsDir when ReportValues is true
	valuesReportFile string

	// LibraryFiles are paths to yaml files containing library annotations (no-return functions, pure functions,
	// const parameters). Paths are relative to the config file.
	LibraryFiles []string `yaml:"library-files"`

	// Library contains annotations written directly in the config file
	Library []FunctionSpec `yaml:"library"`
}

// FunctionSpec annotates library functions matched by a FunctionIdentifier
type FunctionSpec struct {
	FunctionIdentifier `yaml:",inline"`

	// NoReturn is true for functions that never return (exit, abort, ...)
	NoReturn bool `yaml:"noreturn"`

	// Pure is true for functions without side effects whose result only depends on their arguments
	Pure bool `yaml:"pure"`

	// ConstArgs lists the (1-based) parameters through which the function never writes. A value of 0 means all.
	ConstArgs []int `yaml:"const-args"`
}

// Options holds the settings of the analysis
type Options struct {
	// ReportsDir is the directory where all the reports will be stored. If the yaml config file this config struct
	// has been loaded does not specify a ReportsDir but sets any Report* option to true, then ReportsDir will be
	// created in the folder of the config file.
	ReportsDir string `yaml:"reports-dir"`

	// ReportValues specifies whether the values attached to tokens should be written to a file named values-*.out in
	// the reports directory
	ReportValues bool `yaml:"report-values"`

	// CheckLevel is either "normal" or "exhaustive". Condition-expression analysis only runs at the exhaustive level.
	CheckLevel string `yaml:"check-level"`

	// DebugWarnings enables the debug records emitted when the analysis bails out
	DebugWarnings bool `yaml:"debug-warnings"`

	// DebugNormal enables the printing of the values computed for each token
	DebugNormal bool `yaml:"debug-normal"`

	// SwitchCaseForward enables the propagation of case label values into the body of the case
	SwitchCaseForward bool `yaml:"switch-case-forward"`

	// MaxForwardDepth bounds the nesting of branches the forward analysis follows. If <= 0, the default is used.
	MaxForwardDepth int `yaml:"max-forward-depth"`

	// MaxVisitedTokens bounds the number of tokens one propagation visits. If <= 0, the default is used.
	MaxVisitedTokens int `yaml:"max-visited-tokens"`

	// Jobs is the number of files analyzed in parallel by the tools. If <= 0, the number of CPUs is used.
	Jobs int `yaml:"jobs"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns a default config.
func NewDefault() *Config {
	return &Config{
		sourceFile:       "",
		valuesReportFile: "",
		LibraryFiles:     []string{},
		Library:          nil,
		Options: Options{
			ReportsDir:        "",
			ReportValues:      false,
			CheckLevel:        CheckLevelExhaustive,
			DebugWarnings:     false,
			DebugNormal:       false,
			SwitchCaseForward: true,
			MaxForwardDepth:   DefaultMaxForwardDepth,
			MaxVisitedTokens:  DefaultMaxVisitedTokens,
			Jobs:              0,
			LogLevel:          int(InfoLevel),
			SilenceWarn:       false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return LoadFromBytes(filename, b)
}

// LoadFromBytes reads a configuration from the contents b of the file filename
func LoadFromBytes(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", filename, err)
	}

	cfg.sourceFile = filename

	if cfg.CheckLevel != CheckLevelNormal && cfg.CheckLevel != CheckLevelExhaustive {
		return nil, fmt.Errorf("invalid check-level %q, expected %q or %q", cfg.CheckLevel, CheckLevelNormal,
			CheckLevelExhaustive)
	}

	if cfg.ReportValues {
		if err := setReportsDir(cfg, filename); err != nil {
			return nil, err
		}
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.MaxForwardDepth <= 0 {
		cfg.MaxForwardDepth = DefaultMaxForwardDepth
	}

	if cfg.MaxVisitedTokens <= 0 {
		cfg.MaxVisitedTokens = DefaultMaxVisitedTokens
	}

	for i := range cfg.Library {
		cfg.Library[i].FunctionIdentifier = CompileRegexes(cfg.Library[i].FunctionIdentifier)
	}

	return cfg, nil
}

func setReportsDir(c *Config, filename string) error {
	if c.ReportsDir == "" {
		tmpdir, err := os.MkdirTemp(path.Dir(filename), "*-report")
		if err != nil {
			return fmt.Errorf("could not create temp dir for reports")
		}
		c.ReportsDir = tmpdir

		reportFile, err := os.CreateTemp(c.ReportsDir, "values-*.out")
		if err != nil {
			return fmt.Errorf("could not create report file for values")
		}
		c.valuesReportFile = reportFile.Name()
		reportFile.Close() // the file will be reopened as needed
	} else {
		err := os.Mkdir(c.ReportsDir, 0750)
		if err != nil {
			if !os.IsExist(err) {
				return fmt.Errorf("could not create directory %s", c.ReportsDir)
			}
		}
	}
	return nil
}

// ValuesReportFile returns the file name that will contain the values report, empty if none has been created
func (c Config) ValuesReportFile() string {
	return c.valuesReportFile
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// IsExhaustive returns true if the check level is exhaustive
func (c Config) IsExhaustive() bool {
	return c.CheckLevel == CheckLevelExhaustive
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// ExceedsMaxDepth returns true if the branch nesting depth d exceeds the configured maximum.
func (c Config) ExceedsMaxDepth(d int) bool {
	if c.MaxForwardDepth <= 0 {
		return d > DefaultMaxForwardDepth
	}
	return d > c.MaxForwardDepth
}

// ExceedsMaxVisits returns true if the number of tokens n visited by a propagation exceeds the configured maximum.
func (c Config) ExceedsMaxVisits(n int) bool {
	if c.MaxVisitedTokens <= 0 {
		return n > DefaultMaxVisitedTokens
	}
	return n > c.MaxVisitedTokens
}

// NumJobs returns the number of files that can be analyzed in parallel
func (c Config) NumJobs() int {
	if c.Jobs <= 0 {
		return runtime.NumCPU()
	}
	return c.Jobs
}

// LibraryPaths returns the library files, relative to the config file
func (c Config) LibraryPaths() []string {
	var paths []string
	for _, f := range c.LibraryFiles {
		if path.IsAbs(f) || c.sourceFile == "" {
			paths = append(paths, f)
		} else {
			paths = append(paths, c.RelPath(f))
		}
	}
	return paths
}
