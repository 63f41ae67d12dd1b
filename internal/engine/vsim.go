package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Markers delimiting one command exchange with the simulator. Every command
// sent to the subprocess is wrapped in a catch that ends with exactly one
// marker line, so reads are bounded.
const (
	markOK  = "<<vrt:ok>>"
	markErr = "<<vrt:err>>"
)

// Vsim drives a ModelSim/Questa-compatible simulator as a subprocess,
// exchanging TCL commands over its stdin/stdout.
type Vsim struct {
	bin    string // simulator binary, e.g. "vsim"
	libDir string // directory holding the compiled libraries
	gui    bool
	log    *zap.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	lines  *bufio.Scanner
	libs   map[string]bool
	active *vsimSession
}

// NewVsim returns an engine backed by the given simulator binary. The
// subprocess is launched on first use.
func NewVsim(bin, libDir string, gui bool, log *zap.Logger) *Vsim {
	return &Vsim{
		bin:    bin,
		libDir: libDir,
		gui:    gui,
		log:    log,
		libs:   make(map[string]bool),
	}
}

// Interactive reports whether the simulator was started with a user-facing
// waveform session.
func (v *Vsim) Interactive() bool {
	return v.gui
}

func (v *Vsim) ensureStarted() error {
	if v.cmd != nil {
		return nil
	}
	args := []string{"-c"}
	if v.gui {
		args = []string{"-gui"}
	}
	cmd := exec.Command(v.bin, args...)
	cmd.Dir = v.libDir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open simulator stdin: %w", err)
	}
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start simulator %s: %w", v.bin, err)
	}
	v.cmd = cmd
	v.stdin = stdin
	v.lines = bufio.NewScanner(pr)
	v.lines.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	v.log.Debug("simulator started", zap.String("bin", v.bin), zap.Bool("gui", v.gui))
	return nil
}

// command sends one TCL command wrapped in a catch and reads the transcript
// up to the marker line. The returned string holds everything the command
// printed before the marker.
func (v *Vsim) command(tcl string) (string, error) {
	if err := v.ensureStarted(); err != nil {
		return "", err
	}
	v.log.Debug("simulator command", zap.String("tcl", tcl))
	wrapped := fmt.Sprintf(
		"if {[catch {%s} vrt_result]} { puts \"%s $vrt_result\" } else { puts \"%s\" }\n",
		tcl, markErr, markOK,
	)
	if _, err := io.WriteString(v.stdin, wrapped); err != nil {
		return "", fmt.Errorf("write to simulator: %w", err)
	}

	var out strings.Builder
	for v.lines.Scan() {
		line := v.lines.Text()
		if strings.HasPrefix(line, markOK) {
			return out.String(), nil
		}
		if strings.HasPrefix(line, markErr) {
			msg := strings.TrimSpace(strings.TrimPrefix(line, markErr))
			return out.String(), fmt.Errorf("simulator: %s", msg)
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	if err := v.lines.Err(); err != nil {
		return out.String(), fmt.Errorf("read from simulator: %w", err)
	}
	return out.String(), fmt.Errorf("simulator exited unexpectedly")
}

// query evaluates a TCL expression and returns its substituted value.
func (v *Vsim) query(expr string) (string, error) {
	if err := v.ensureStarted(); err != nil {
		return "", err
	}
	wrapped := fmt.Sprintf(
		"if {[catch {set vrt_result \"%s\"} vrt_result]} { puts \"%s $vrt_result\" } else { puts \"%s $vrt_result\" }\n",
		expr, markErr, markOK,
	)
	if _, err := io.WriteString(v.stdin, wrapped); err != nil {
		return "", fmt.Errorf("write to simulator: %w", err)
	}
	for v.lines.Scan() {
		line := v.lines.Text()
		if strings.HasPrefix(line, markOK) {
			return strings.TrimSpace(strings.TrimPrefix(line, markOK)), nil
		}
		if strings.HasPrefix(line, markErr) {
			msg := strings.TrimSpace(strings.TrimPrefix(line, markErr))
			return "", fmt.Errorf("simulator: %s", msg)
		}
	}
	if err := v.lines.Err(); err != nil {
		return "", fmt.Errorf("read from simulator: %w", err)
	}
	return "", fmt.Errorf("simulator exited unexpectedly")
}

// CreateLibrary runs vlib for the named library inside the library directory.
func (v *Vsim) CreateLibrary(name string) error {
	if v.libs[name] {
		return nil
	}
	if _, err := v.command(fmt.Sprintf("vlib {%s}", name)); err != nil {
		return fmt.Errorf("create library %s: %w", name, err)
	}
	v.libs[name] = true
	return nil
}

// Compile runs vcom for one source file.
func (v *Vsim) Compile(path, library string, flags []string) error {
	tcl := fmt.Sprintf("vcom -quiet -work {%s} %s {%s}", library, strings.Join(flags, " "), path)
	out, err := v.command(tcl)
	if err != nil {
		return &CompileError{
			Path:       path,
			Library:    library,
			Diagnostic: strings.TrimSpace(out + err.Error()),
		}
	}
	return nil
}

// Start elaborates library.entity and leaves the simulator sitting at time
// zero inside opts.Dir.
func (v *Vsim) Start(library, entity string, opts StartOptions) (Session, error) {
	if _, err := v.command(fmt.Sprintf("cd {%s}", opts.Dir)); err != nil {
		return nil, fmt.Errorf("enter %s: %w", opts.Dir, err)
	}
	// Map the libraries so they resolve from the test working directory.
	for lib := range v.libs {
		if _, err := v.command(fmt.Sprintf("vmap {%s} {%s/%s}", lib, v.libDir, lib)); err != nil {
			return nil, fmt.Errorf("map library %s: %w", lib, err)
		}
	}

	sess := &vsimSession{v: v}
	tcl := fmt.Sprintf("vsim %s {%s.%s}", strings.Join(opts.Flags, " "), library, entity)
	out, err := v.command(tcl)
	sess.out.WriteString(out)
	if err != nil {
		return nil, fmt.Errorf("elaborate %s.%s: %w", library, entity, err)
	}

	suppress := 0
	if opts.SuppressWarnings {
		suppress = 1
	}
	warn := fmt.Sprintf(
		"set StdArithNoWarnings %d; set StdNumNoWarnings %d; set NumericStdNoWarnings %d",
		suppress, suppress, suppress,
	)
	if _, err := v.command(warn); err != nil {
		v.log.Warn("set warning suppression", zap.Error(err))
	}

	if v.gui && !opts.Fast {
		if opts.LogAll {
			if _, err := v.command("add log -recursive *"); err != nil {
				v.log.Warn("log all signals", zap.Error(err))
			}
		}
		if opts.WaveConfig != "" {
			if _, err := os.Stat(opts.WaveConfig); err == nil {
				if err := sess.LoadWaveConfig(opts.WaveConfig); err != nil {
					v.log.Warn("load wave config", zap.String("path", opts.WaveConfig), zap.Error(err))
				}
			}
		}
	}

	v.active = sess
	return sess, nil
}

// Quit ends any ongoing simulation, tracked by the harness or not.
func (v *Vsim) Quit() error {
	if v.cmd == nil {
		return nil
	}
	v.active = nil
	if _, err := v.command("quit -sim"); err != nil {
		return fmt.Errorf("quit simulation: %w", err)
	}
	return nil
}

// Close shuts the simulator subprocess down. The engine is unusable after.
func (v *Vsim) Close() error {
	if v.cmd == nil {
		return nil
	}
	_, _ = io.WriteString(v.stdin, "quit -f\n")
	_ = v.stdin.Close()
	err := v.cmd.Wait()
	v.cmd = nil
	return err
}

// vsimSession is a live simulation inside the vsim subprocess.
type vsimSession struct {
	v   *Vsim
	out strings.Builder
}

// Run advances the simulation, absorbing any failure break raised by the
// design so the status probes can still run afterwards.
func (s *vsimSession) Run(limit string) error {
	out, err := s.v.command(fmt.Sprintf("onbreak resume; run %s; onbreak {}", limit))
	s.out.WriteString(out)
	if err != nil {
		return fmt.Errorf("run %s: %w", limit, err)
	}
	return nil
}

func (s *vsimSession) AtEnd() (bool, error) {
	status, err := s.v.query("[runStatus -full]")
	if err != nil {
		return false, fmt.Errorf("query run status: %w", err)
	}
	return status == "ready end", nil
}

func (s *vsimSession) Step() error {
	out, err := s.v.command("onbreak resume; run -step; onbreak {}")
	s.out.WriteString(out)
	if err != nil {
		return fmt.Errorf("step: %w", err)
	}
	return nil
}

func (s *vsimSession) Now() (string, error) {
	now, err := s.v.query("$now $UserTimeUnit")
	if err != nil {
		return "", fmt.Errorf("query simulation time: %w", err)
	}
	return now, nil
}

func (s *vsimSession) SaveWaveConfig(path string) error {
	if _, err := s.v.command(fmt.Sprintf("write format wave {%s}", path)); err != nil {
		return fmt.Errorf("save wave config: %w", err)
	}
	return nil
}

func (s *vsimSession) LoadWaveConfig(path string) error {
	if _, err := s.v.command(fmt.Sprintf("do {%s}", path)); err != nil {
		return fmt.Errorf("load wave config: %w", err)
	}
	return nil
}

func (s *vsimSession) Output() string {
	return s.out.String()
}
