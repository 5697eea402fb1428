package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	sberrors "github.com/tum-esm/sensorboard/internal/errors"
	"github.com/tum-esm/sensorboard/internal/ui"
)

// statusOptions holds options for the status command.
type statusOptions struct {
	Format string
	Out    io.Writer
	Stderr io.Writer
}

// statusCommand requests the server status and prints it.
func statusCommand(ctx context.Context, opts statusOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := ParseFormat(opts.Format, FormatText, FormatJSON, FormatYAML)
	if err != nil {
		return err
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	a, err := newApp(appOptions{
		ConfigPath: cfgFile,
		Verbose:    verbose,
		LogFormat:  logFormat,
		LogFile:    logFile,
		Stderr:     stderr,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	var spinner *ui.Spinner
	if format == FormatText && isTerminal(stderr) {
		spinner = ui.NewSpinner(fmt.Sprintf("Requesting status from %s", a.cfg.ServerURL))
		spinner.SetOutput(func(s string) { fmt.Fprint(stderr, s) })
		spinner.Start()
	}

	status, err := a.client.GetStatus(ctx)
	if spinner != nil {
		if err != nil {
			spinner.Fail()
		} else {
			spinner.Success()
		}
	}
	if err != nil {
		return sberrors.WrapWithCode(err, sberrors.ErrFetch,
			fmt.Sprintf("Couldn't get the status of %s", a.cfg.ServerURL),
			"Check server_url and your network connection")
	}
	a.store.SetServerStatus(status)

	switch format {
	case FormatJSON:
		return WriteJSONSuccess(opts.Out, status)
	case FormatYAML:
		var doc interface{}
		if err := json.Unmarshal(status, &doc); err != nil {
			return sberrors.WrapWithCode(err, sberrors.ErrFetch,
				"Server status isn't valid JSON", "")
		}
		return writeYAML(opts.Out, doc)
	}

	ui.PrintHeader(opts.Out, ui.HeaderInfo{
		Version: formatVersion(version),
		Server:  a.cfg.ServerURL,
		Network: a.cfg.NetworkID,
	})

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, status, "", "  "); err != nil {
		// Print the body as sent.
		pretty.Reset()
		pretty.Write(status)
	}
	fmt.Fprintln(opts.Out, pretty.String())
	return nil
}
