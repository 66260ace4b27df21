package replay

import (
	"os"
	"strings"

	"github.com/killallgit/sheetfreak/pkg/stream"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// PromptPlaceholder in a scripted turn is replaced by the submitted command
const PromptPlaceholder = "{{prompt}}"

// Script is the scripted answer the replay backend streams for every command
type Script struct {
	Turns []string `yaml:"turns"`
}

// DefaultScript mimics a read-only agent run
func DefaultScript() Script {
	return Script{Turns: []string{
		"Read in data...",
		"Formulated instructions:\n[('READ', '" + PromptPlaceholder + "')]",
		"Executing...\n('READ', '" + PromptPlaceholder + "')",
		"The data you requested is:\n[1, 2, 3]",
	}}
}

func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, errors.Wrap(err, "failed to parse replay script")
	}
	if len(s.Turns) == 0 {
		return Script{}, errors.New("replay script has no turns")
	}
	for i, turn := range s.Turns {
		if strings.Contains(turn, stream.Sentinel) {
			return Script{}, errors.Errorf("replay script turn %d contains the message delimiter", i)
		}
	}
	return s, nil
}

func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, errors.Wrapf(err, "failed to read replay script %s", path)
	}
	return ParseScript(data)
}

// Words returns the wire tokens for prompt: the words of every turn, with
// the sentinel between turns.
func (s Script) Words(prompt string) []string {
	var words []string
	for i, turn := range s.Turns {
		if i > 0 {
			words = append(words, stream.Sentinel)
		}
		text := strings.ReplaceAll(turn, PromptPlaceholder, prompt)
		words = append(words, strings.Split(text, stream.TokenSeparator)...)
	}
	return words
}

// Body returns the complete response body for prompt
func (s Script) Body(prompt string) string {
	return strings.Join(s.Words(prompt), stream.TokenSeparator)
}
