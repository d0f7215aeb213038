package opencl

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
)

// DefaultBuildOptions turns warnings into build errors.
const DefaultBuildOptions = "-Werror"

// BuildReport is the outcome of compiling one program for one device.
type BuildReport struct {
	Status BuildStatus
	Log    string
}

// Compile creates a program from source and builds it for device. A program
// that fails to compile is not an error: the failure is reported through
// Status and Log.
func Compile(api API, ctx Context, device DeviceID, source, options string) (report *BuildReport, err error) {
	prog, err := api.CreateProgramWithSource(ctx, source)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, api.ReleaseProgram(prog))
	}()

	if err := api.BuildProgram(prog, []DeviceID{device}, options); err != nil {
		switch {
		case errors.Is(err, BuildProgramFailure):
			// reported through the build status and log
		case errors.Is(err, InvalidBuildOptions):
			return nil, fmt.Errorf("failed on clBuildProgram with build options: %s: %w", options, err)
		default:
			return nil, err
		}
	}

	raw, err := api.GetProgramBuildInfo(prog, device, ProgramBuildStatus)
	if err != nil {
		return nil, err
	}
	log, err := api.GetProgramBuildInfo(prog, device, ProgramBuildLog)
	if err != nil {
		return nil, err
	}
	return &BuildReport{
		Status: BuildStatus(int32(decodeUint(raw))),
		Log:    cString(log),
	}, nil
}

// CompileFiles prints a build report for every source file. Processing
// continues after a failed file; the returned error covers every failure.
func CompileFiles(w io.Writer, api API, ctx Context, device DeviceID, options string, paths []string) error {
	if len(paths) == 0 {
		return errors.New("no source files were given")
	}
	var errs error
	for _, path := range paths {
		fmt.Fprintf(w, "source: %s ... ", path)
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(w, "error")
			errs = multierr.Append(errs, fmt.Errorf("failed to read %q: %w", path, err))
			continue
		}
		report, err := Compile(api, ctx, device, string(src), options)
		if err != nil {
			fmt.Fprintln(w, "error")
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		fmt.Fprintln(w, report.Status)
		io.WriteString(w, report.Log)
		fmt.Fprintln(w)
		if report.Status != BuildSuccess {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s", path, report.Status))
		}
	}
	return errs
}
