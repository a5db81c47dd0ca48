// Package prompt wraps promptui for the interactive commands.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user presses Ctrl+C or Ctrl+D.
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err came from the user leaving a prompt.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrEOF) ||
		errors.Is(err, ErrAborted)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Prompter runs prompts against a terminal. The zero value uses stdin and
// stdout.
type Prompter struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

// Confirm asks a yes/no question. An empty answer returns defaultYes.
func (p *Prompter) Confirm(label string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}

	pr := promptui.Prompt{
		Label:  fmt.Sprintf("%s [%s]", label, hint),
		Stdin:  p.Stdin,
		Stdout: p.Stdout,
	}
	result, err := pr.Run()
	if err != nil {
		return false, wrapError(err)
	}

	switch strings.ToLower(strings.TrimSpace(result)) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Input asks for free text, offering defaultValue.
func (p *Prompter) Input(label, defaultValue string) (string, error) {
	pr := promptui.Prompt{
		Label:     label,
		Default:   defaultValue,
		AllowEdit: true,
		Stdin:     p.Stdin,
		Stdout:    p.Stdout,
	}
	result, err := pr.Run()
	return strings.TrimSpace(result), wrapError(err)
}

// Choice is one entry of a Select prompt.
type Choice struct {
	Label   string
	Details string
}

// Select shows choices and returns the index picked.
func (p *Prompter) Select(label string, choices []Choice) (int, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "* {{ .Label | green }}",
	}
	if len(choices) > 0 && choices[0].Details != "" {
		templates.Details = `{{ .Details | faint }}`
	}

	sel := promptui.Select{
		Label:        label,
		Items:        choices,
		Templates:    templates,
		Size:         max(len(choices), 1),
		HideSelected: true,
		Stdin:        p.Stdin,
		Stdout:       p.Stdout,
	}
	i, _, err := sel.Run()
	return i, wrapError(err)
}

// ConfirmWithForce returns true without asking when force is set.
func (p *Prompter) ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return p.Confirm(label, false)
}
