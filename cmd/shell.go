package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/encodeous/linkstate/core"
	"github.com/encodeous/linkstate/state"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const shellHelp = `Commands:
  update <a> <b> <cost>   set a link cost and re-converge
  remove <a> <b>          remove a link and re-converge
  table <node>            print the routing table of a node
  path <from> <to>        print the shortest path between two nodes
  resolve <from> <addr>   find the owner of an address and the route to it
  links                   print every physical link
  inspect                 dump the state of every node
  quit                    leave the shell`

var errQuit = errors.New("quit")

var metricsAddr = ""

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session: change links and query routes while the network re-converges",
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, _, closer, err := buildTopology(cmd)
		if err != nil {
			return err
		}
		defer closer()

		rt := core.NewRuntime(cmd.Context(), topo, topo.Log)
		rt.Start()
		defer rt.Stop(nil)

		if metricsAddr != "" {
			// serves /debug/metrics and /debug/vars
			srv := &http.Server{Addr: metricsAddr}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					topo.Log.Error("metrics server stopped", "error", err)
				}
			}()
			defer srv.Close()
		}

		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(c)
		go func() {
			select {
			case <-c:
				rt.Cancel(errors.New("received shutdown signal"))
			case <-rt.Done():
			}
		}()

		topo.Log.Info("network initialized, type help for a list of commands")
		return runShell(rt, inputSource(cmd.InOrStdin(), cmd.OutOrStdout()), cmd.OutOrStdout())
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().StringVarP(&metricsAddr, "metrics", "m", metricsAddr, "serve convergence metrics on this address, e.g. 127.0.0.1:8080")
}

// lineSource yields one shell command per call, io.EOF ends the session
type lineSource func() (string, error)

func scannerSource(in io.Reader) lineSource {
	sc := bufio.NewScanner(in)
	return func() (string, error) {
		if sc.Scan() {
			return sc.Text(), nil
		}
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
}

// promptSource reads commands with line editing, Ctrl+C and Ctrl+D end the session
func promptSource(in io.ReadCloser, out io.WriteCloser) lineSource {
	return func() (string, error) {
		prompt := promptui.Prompt{
			Label:  "linkstate",
			Stdin:  in,
			Stdout: out,
		}
		line, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", io.EOF
		}
		return line, err
	}
}

// inputSource picks the prompt when in is an interactive terminal, and a plain line scanner for piped scripts
func inputSource(in io.Reader, out io.Writer) lineSource {
	if f, ok := in.(*os.File); ok {
		if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			if w, ok := out.(*os.File); ok {
				return promptSource(f, w)
			}
		}
	}
	return scannerSource(in)
}

// runShell executes commands until the input ends, quit is entered or the runtime stops
func runShell(rt *core.Runtime, next lineSource, out io.Writer) error {
	type line struct {
		text string
		err  error
	}
	lines := make(chan line)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			text, err := next()
			select {
			case lines <- line{text, err}:
			case <-stop:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-rt.Done():
			return nil
		case l := <-lines:
			if errors.Is(l.err, io.EOF) {
				return nil
			}
			if l.err != nil {
				return l.err
			}
			err := execLine(rt, l.text, out)
			if errors.Is(err, errQuit) || errors.Is(err, core.ErrStopped) {
				return nil
			}
			if err != nil {
				_, _ = fmt.Fprintf(out, "[ERROR] %v\n", err)
			}
		}
	}
}

func parseCost(s string) (state.Cost, error) {
	val, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", state.ErrInvalidCost, s)
	}
	return state.Cost(val), nil
}

func expectArgs(fields []string, n int) error {
	if len(fields)-1 != n {
		return fmt.Errorf("%s expects %d arguments, got %d", fields[0], n, len(fields)-1)
	}
	return nil
}

// execLine runs a single shell command against the runtime
func execLine(rt *core.Runtime, line string, out io.Writer) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	var fun func(t *core.Topology) (any, error)

	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return errQuit
	case "help":
		_, _ = fmt.Fprintln(out, shellHelp)
		return nil
	case "update":
		if err := expectArgs(fields, 3); err != nil {
			return err
		}
		cost, err := parseCost(fields[3])
		if err != nil {
			return err
		}
		fun = func(t *core.Topology) (any, error) {
			_, err := t.UpdateLinkCost(state.NodeId(fields[1]), state.NodeId(fields[2]), cost)
			return nil, err
		}
	case "remove":
		if err := expectArgs(fields, 2); err != nil {
			return err
		}
		fun = func(t *core.Topology) (any, error) {
			_, err := t.DisconnectLink(state.NodeId(fields[1]), state.NodeId(fields[2]))
			return nil, err
		}
	case "table":
		if err := expectArgs(fields, 1); err != nil {
			return err
		}
		fun = func(t *core.Topology) (any, error) {
			return t.FormatTable(state.NodeId(fields[1]))
		}
	case "path":
		if err := expectArgs(fields, 2); err != nil {
			return err
		}
		fun = func(t *core.Topology) (any, error) {
			src, dst := state.NodeId(fields[1]), state.NodeId(fields[2])
			path, ok, err := t.PathBetween(src, dst)
			if err != nil {
				return nil, err
			}
			if !ok {
				return fmt.Sprintf("[PATH] No path found from %s to %s.", src, dst), nil
			}
			return "[PATH] " + formatPath(path), nil
		}
	case "resolve":
		if err := expectArgs(fields, 2); err != nil {
			return err
		}
		addr, err := netip.ParseAddr(fields[2])
		if err != nil {
			return err
		}
		fun = func(t *core.Topology) (any, error) {
			res, err := t.Resolve(state.NodeId(fields[1]), addr)
			if err != nil {
				return nil, err
			}
			return formatResolution(addr, res), nil
		}
	case "links":
		fun = func(t *core.Topology) (any, error) {
			sb := strings.Builder{}
			for _, l := range t.Links() {
				sb.WriteString(fmt.Sprintf("%s <-> %s cost %d\n", l.V1, l.V2, l.Cost))
			}
			return strings.TrimSuffix(sb.String(), "\n"), nil
		}
	case "inspect":
		fun = func(t *core.Topology) (any, error) {
			return strings.TrimSuffix(t.Inspect(), "\n"), nil
		}
	default:
		return fmt.Errorf("unknown command %s, type help for a list of commands", fields[0])
	}

	res, err := rt.DispatchWait(fun)
	if err != nil {
		return err
	}
	if s, ok := res.(string); ok && s != "" {
		_, _ = fmt.Fprintln(out, s)
	}
	return nil
}
