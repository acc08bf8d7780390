package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"taskdash/internal/controller"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

// newController wires a controller whose failure notifications go to errOut.
func newController(svc service.Service, errOut io.Writer) *controller.Controller {
	notify := controller.NotifierFunc(func(msg string) {
		fmt.Fprintf(errOut, "error: %s\n", msg)
	})
	return controller.New(svc, notify, slog.Default())
}

// reportError prints err for errors the controller does not notify about,
// i.e. direct service calls outside the controller.
func reportError(errOut io.Writer, err error, fallback string) int {
	fmt.Fprintf(errOut, "error: %s\n", service.Message(err, fallback))
	return exitcode.For(err)
}

// promptLine writes prompt to out and reads one line from in.
func promptLine(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a line without echo when in is a terminal. Piped
// input goes through promptLine on the shared reader r.
func promptSecret(in io.Reader, r *bufio.Reader, out io.Writer, prompt string) (string, error) {
	f, ok := terminal(in)
	if !ok {
		return promptLine(r, out, prompt)
	}
	fmt.Fprint(out, prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// terminal reports whether in (os.Stdin when nil) is an interactive terminal.
func terminal(in io.Reader) (*os.File, bool) {
	if in == nil {
		in = os.Stdin
	}
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, false
	}
	return f, true
}

// newInput buffers in, or os.Stdin when in is nil.
func newInput(in io.Reader) *bufio.Reader {
	if in == nil {
		in = os.Stdin
	}
	return bufio.NewReader(in)
}
