package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/djherbis/times.v1"

	filechecker "github.com/plipka7/FileChecker"
	"github.com/plipka7/FileChecker/filesystem/xv6fs"
)

var (
	flagVerbose     bool
	flagPrintInodes bool
)

var rootCmd = &cobra.Command{
	Use:   "xcheck <file_system_image>",
	Short: "Check an xv6 file-system image for consistency",
	Long: `xcheck reads an xv6 file-system image and verifies its internal
consistency: inode types, link counts, direct and indirect block addresses,
directory structure, and the allocation bitmap. The image is never modified.

On a consistent image xcheck prints nothing and exits 0. Otherwise it prints
the first violation found to the error stream and exits 1.`,
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		os.Exit(runCheck(os.Stdout, os.Stderr, args[0]))
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log image and geometry details while checking")
	rootCmd.Flags().BoolVar(&flagPrintInodes, "print-inodes", false, "list in-use inodes to stdout before checking")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runCheck opens and checks one image, returning the process exit code.
// out receives the optional inode listing; errw receives error lines.
func runCheck(out, errw io.Writer, pathname string) int {
	log := logrus.New()
	log.SetOutput(errw)
	log.SetLevel(logrus.WarnLevel)
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
		log = logrusWithRun(log)
		if ts, err := times.Stat(pathname); err == nil {
			log.WithFields(logrus.Fields{
				"image":    pathname,
				"modified": ts.ModTime(),
				"accessed": ts.AccessTime(),
			}).Debug("opening image")
		}
	}

	fsys, err := filechecker.Open(pathname)
	if err != nil {
		var perr *fs.PathError
		if errors.As(err, &perr) || errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintln(errw, "image not found.")
		} else {
			fmt.Fprintln(errw, err)
		}
		return 1
	}
	defer fsys.Close()

	if flagVerbose {
		sb := fsys.Superblock()
		log.WithFields(logrus.Fields{
			"blocks":     sb.Size,
			"dataBlocks": sb.NBlocks,
			"inodes":     sb.NInodes,
			"dataStart":  sb.DataStart,
			"dataEnd":    sb.DataEnd,
		}).Debug("decoded superblock")
	}

	if flagPrintInodes {
		if err := fsys.ListInodes(out); err != nil {
			fmt.Fprintln(errw, err)
			return 1
		}
	}

	if err := fsys.Check(); err != nil {
		var cerr *xv6fs.ConsistencyError
		if errors.As(err, &cerr) {
			fmt.Fprintf(errw, "ERROR: %s\n", cerr.Error())
		} else {
			fmt.Fprintln(errw, err)
		}
		return 1
	}

	log.Debug("image is consistent")
	return 0
}

// logrusWithRun tags every entry of a verbose run with a fresh run id, so
// interleaved runs in scripts can be told apart.
func logrusWithRun(log *logrus.Logger) *logrus.Logger {
	log.AddHook(&runIDHook{id: uuid.New().String()})
	return log
}

type runIDHook struct {
	id string
}

func (h *runIDHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *runIDHook) Fire(e *logrus.Entry) error {
	e.Data["run"] = h.id
	return nil
}
