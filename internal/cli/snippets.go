package cmd

import (
	"fmt"

	"github.com/rohmanhakim/lazyload/internal/snippet"
	"github.com/spf13/cobra"
)

var snippetsCmd = &cobra.Command{
	Use:   "snippets",
	Short: "Print the stylesheet and script that accompany rewritten markup",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}

		s := snippet.NewSnippets(nil)
		out := cmd.OutOrStdout()
		if css := s.Stylesheet(cfg); css != "" {
			fmt.Fprintf(out, "<style>%s</style>\n", css)
		}
		if js := s.Script(cfg); js != "" {
			fmt.Fprintf(out, "<script>%s</script>\n", js)
		}
		return nil
	},
}
