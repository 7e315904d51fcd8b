package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rohmanhakim/lazyload/internal/attachment"
	"github.com/rohmanhakim/lazyload/internal/fetcher"
	"github.com/rohmanhakim/lazyload/internal/lazyload"
	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/pkg/fileutil"
	"github.com/spf13/cobra"
)

var (
	ownerID            string
	outputPath         string
	attachmentsPath    string
	blockLibraryStyled bool
	responsiveEmbeds   bool
	preview            bool
	printMetrics       bool
)

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Rewrite the images and iframes of an HTML document",
	Long: `process reads HTML from file, or from stdin when no file is given, and
writes the rewritten HTML to stdout or to --output.

Tags that cannot be rewritten are written back exactly as they were read.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	flags := processCmd.Flags()
	flags.StringVar(&ownerID, "owner", "", "owner id the content belongs to; empty disables caching")
	flags.StringVarP(&outputPath, "output", "o", "", "write the result to this file instead of stdout")
	flags.StringVar(&attachmentsPath, "attachments", "", "JSON manifest of featured attachments and their LQIP renditions")
	flags.BoolVar(&blockLibraryStyled, "block-library-styled", false, "the host stylesheet already sizes embeds")
	flags.BoolVar(&responsiveEmbeds, "responsive-embeds", false, "the theme makes embeds responsive")
	flags.BoolVar(&preview, "preview", false, "render a preview: never read or write cached fragments")
	flags.BoolVar(&printMetrics, "metrics", false, "print counters to stderr when done")
}

func resetProcessFlags() {
	ownerID = ""
	outputPath = ""
	attachmentsPath = ""
	blockLibraryStyled = false
	responsiveEmbeds = false
	preview = false
	printMetrics = false
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := InitConfigWithError()
	if err != nil {
		return err
	}

	content, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	s, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	var attachments attachment.Resolver = attachment.None{}
	if attachmentsPath != "" {
		manifest, err := attachment.LoadManifest(attachmentsPath)
		if err != nil {
			return err
		}
		attachments = manifest
	}

	registry := prometheus.NewRegistry()
	recorder, err := newRecorder(cmd.ErrOrStderr(), metadata.NewMetrics(registry))
	if err != nil {
		return err
	}

	engine := lazyload.NewEngineWithDeps(lazyload.Deps{
		MetadataSink: recorder,
		Store:        s,
		Fetcher:      fetcher.NewHTTPFetcher(recorder, nil),
		Attachments:  attachments,
	}).WithEnvironment(lazyload.Environment{
		BlockLibraryStyled: blockLibraryStyled,
		ResponsiveEmbeds:   responsiveEmbeds,
		Preview:            preview,
	})

	result := engine.Process(cmd.Context(), content, cfg, ownerID)

	if outputPath != "" {
		if err := fileutil.WriteFileAtomic(outputPath, []byte(result)); err != nil {
			return err
		}
	} else if _, err := io.WriteString(cmd.OutOrStdout(), result); err != nil {
		return err
	}

	if printMetrics {
		return writeCounters(cmd.ErrOrStderr(), registry)
	}
	return nil
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(raw), nil
}

// writeCounters prints every counter sample in reg as "name{labels} value",
// sorted by line.
func writeCounters(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}

	var lines []string
	for _, family := range families {
		for _, m := range family.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", family.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func SetOwnerForTest(id string) {
	ownerID = id
}

func SetOutputForTest(path string) {
	outputPath = path
}

func SetAttachmentsForTest(path string) {
	attachmentsPath = path
}
