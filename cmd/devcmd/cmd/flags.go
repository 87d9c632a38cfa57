package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/msto63/devcmd/internal/model"
	"github.com/msto63/devcmd/internal/report"
)

// exitStyleValue is a pflag.Value accepting after-step, immediate or end.
type exitStyleValue struct {
	style *model.ExitStyle
}

var _ pflag.Value = (*exitStyleValue)(nil)

func (v *exitStyleValue) String() string {
	if v.style == nil {
		return ""
	}
	return v.style.String()
}

func (v *exitStyleValue) Set(s string) error {
	style, err := model.ParseExitStyle(s)
	if err != nil {
		return fmt.Errorf("must be one of %s", model.ExitStyleChoices())
	}
	v.style = &style
	return nil
}

func (v *exitStyleValue) Type() string {
	return "style"
}

// colorValue is a pflag.Value accepting auto, always or never.
type colorValue struct {
	mode report.ColorMode
}

var _ pflag.Value = (*colorValue)(nil)

func (v *colorValue) String() string {
	return v.mode.String()
}

func (v *colorValue) Set(s string) error {
	mode, err := report.ParseColorMode(s)
	if err != nil {
		return fmt.Errorf("must be one of auto, always, never")
	}
	v.mode = mode
	return nil
}

func (v *colorValue) Type() string {
	return "when"
}

func completeExitStyle(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(model.ExitStyles))
	for i, s := range model.ExitStyles {
		names[i] = s.String()
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func completeColor(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(report.ColorModes))
	for i, m := range report.ColorModes {
		names[i] = m.String()
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
