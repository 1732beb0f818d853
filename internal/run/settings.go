package run

import (
	"sort"

	"github.com/costela/lpmodel"
)

// Settings are shared by the executable-based backends.
type Settings struct {
	Executable string
	Options    map[string]string
	WorkDir    string
	KeepFiles  bool
	Logger     lpmodel.Logger
}

// NewSettings returns settings running executable with no options.
func NewSettings(executable string) Settings {
	return Settings{
		Executable: executable,
		Options:    make(map[string]string),
		Logger:     lpmodel.NoopLogger(),
	}
}

// OptionNames returns the option names in sorted order, so command lines
// are reproducible.
func (s *Settings) OptionNames() []string {
	names := make([]string, 0, len(s.Options))
	for k := range s.Options {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
