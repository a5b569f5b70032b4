package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/soocke/pixel-labeler/domain/annotation"
)

const (
	wordRedo  = "redo"
	wordClean = "clean"

	// InvalidMessage is printed after an answer outside the vocabulary.
	InvalidMessage = "Invalid label."
)

// Prompter asks the operator for the label of a frozen box. Ask blocks on the input
// stream; it is called from the UI thread between pointer events.
type Prompter struct {
	in    *bufio.Scanner
	out   io.Writer
	vocab annotation.Vocabulary
	lower cases.Caser
	text  string
}

// NewPrompter reads answers line by line from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer, vocab annotation.Vocabulary) *Prompter {
	return &Prompter{
		in:    bufio.NewScanner(in),
		out:   out,
		vocab: vocab,
		lower: cases.Lower(language.Und),
		text:  fmt.Sprintf("Enter label [%s] or '%s' or '%s': ", strings.Join(vocab.Labels(), ", "), wordRedo, wordClean),
	}
}

// Text returns the prompt line.
func (p *Prompter) Text() string { return p.text }

// Ask prompts until the operator types a vocabulary label, redo or clean. It returns
// io.EOF when the input ends before a valid answer.
func (p *Prompter) Ask() (annotation.Response, error) {
	for {
		if _, err := io.WriteString(p.out, p.text); err != nil {
			return annotation.Response{}, fmt.Errorf("write prompt: %w", err)
		}
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return annotation.Response{}, fmt.Errorf("read label: %w", err)
			}
			return annotation.Response{}, io.EOF
		}
		if r, ok := p.Parse(p.in.Text()); ok {
			return r, nil
		}
		if _, err := fmt.Fprintln(p.out, InvalidMessage); err != nil {
			return annotation.Response{}, fmt.Errorf("write prompt: %w", err)
		}
	}
}

// Parse maps one answer to a response after trimming and lowercasing it.
func (p *Prompter) Parse(answer string) (annotation.Response, bool) {
	a := p.lower.String(strings.TrimSpace(answer))
	switch {
	case a == wordRedo:
		return annotation.Redo(), true
	case a == wordClean:
		return annotation.Clean(), true
	case p.vocab.Contains(a):
		return annotation.Accept(a), true
	default:
		return annotation.Response{}, false
	}
}
