package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// promptConfirmer asks y/N questions on the terminal.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
	yes bool
}

func newPromptConfirmer(in io.Reader, out io.Writer, yes bool) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out, yes: yes}
}

func (p *promptConfirmer) Confirm(prompt string) bool {
	if p.yes {
		return true
	}
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// printNotifier shows toasts as lines of output.
type printNotifier struct {
	out    io.Writer
	logger *logrus.Entry
}

func newPrintNotifier(out io.Writer, logger *logrus.Entry) *printNotifier {
	return &printNotifier{out: out, logger: logger}
}

func (n *printNotifier) Success(msg string) {
	fmt.Fprintln(n.out, msg)
}

func (n *printNotifier) Error(msg string) {
	fmt.Fprintln(n.out, "Error:", msg)
	n.logger.Debug(msg)
}
