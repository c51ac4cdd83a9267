// Package prompt asks interactive questions on a line-oriented terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	YearQuestion     = "Please enter a year you would like to have a map for: "
	LocationQuestion = "Please enter your location (format: lat, long): "
	CountryQuestion  = "Please enter a country you would like to have a map for: "
)

var ErrNoAnswer = errors.New("no answer given")

type Asker struct {
	r *bufio.Reader
	w io.Writer
}

func New(r io.Reader, w io.Writer) *Asker {
	return &Asker{r: bufio.NewReader(r), w: w}
}

// Ask writes question and returns the next input line without surrounding
// whitespace. Input ending before any answer is ErrNoAnswer.
func (a *Asker) Ask(question string) (string, error) {
	if _, err := io.WriteString(a.w, question); err != nil {
		return "", err
	}
	line, err := a.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: %q", ErrNoAnswer, strings.TrimSpace(question))
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// AskIfEmpty returns value unchanged unless it is empty, in which case the
// question is asked.
func (a *Asker) AskIfEmpty(value, question string) (string, error) {
	if value != "" {
		return value, nil
	}
	return a.Ask(question)
}
