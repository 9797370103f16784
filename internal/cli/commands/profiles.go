package commands

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/leapfmt/internal/cli/output"
	"github.com/leapstack-labs/leapfmt/pkg/style"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// exportedProfile is a profile in the shape of the profiles section of
// .leapfmt.yaml.
type exportedProfile struct {
	Name             string `yaml:"name"`
	IndentMultiplier int    `yaml:"indent_multiplier"`
	MaxWidth         int    `yaml:"max_width"`
	FormatJavadoc    bool   `yaml:"format_javadoc"`
	ReorderModifiers bool   `yaml:"reorder_modifiers"`
	Description      string `yaml:"description,omitempty"`
}

// NewProfilesCommand creates the profiles command.
func NewProfilesCommand() *cobra.Command {
	var export bool
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List style profiles",
		Long: `List the built-in style profiles and those declared in .leapfmt.yaml.

With --export the profiles are printed as a profiles section that can be
pasted into .leapfmt.yaml and edited.`,
		Example: `  leapfmt profiles
  leapfmt profiles --export > profiles.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProfiles(cmd, export)
		},
	}
	cmd.Flags().BoolVar(&export, "export", false, "Print profiles as a .leapfmt.yaml profiles section")
	return cmd
}

func runProfiles(cmd *cobra.Command, export bool) error {
	cc, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return err
	}
	r := cc.Renderer
	profiles := style.All()

	if export {
		out := struct {
			Profiles []exportedProfile `yaml:"profiles"`
		}{}
		for _, p := range profiles {
			out.Profiles = append(out.Profiles, exportedProfile{
				Name:             string(p.Style),
				IndentMultiplier: p.IndentMultiplier,
				MaxWidth:         p.MaxWidth,
				FormatJavadoc:    p.FormatJavadoc,
				ReorderModifiers: p.ReorderModifiers,
				Description:      p.Description,
			})
		}
		enc := yaml.NewEncoder(r.Writer())
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to encode profiles: %w", err)
		}
		return enc.Close()
	}

	current := string(style.Default)
	if opts, err := cc.Cfg.StyleOptions(); err == nil {
		current = string(opts.Style)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{
			"current":  current,
			"profiles": profiles,
		})
	}

	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		name := string(p.Style)
		if name == current {
			name += " *"
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(p.Indent(2)),
			strconv.Itoa(p.Indent(4)),
			strconv.Itoa(p.MaxWidth),
			yesNo(p.FormatJavadoc),
			yesNo(p.ReorderModifiers),
			p.Description,
		})
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(2, "Style Profiles"))
		r.Println()
	} else {
		r.Println(r.Styles().Header1.Render(output.Title("style profiles")))
	}
	r.Table([]string{"Profile", "Indent", "Continuation", "Width", "Javadoc", "Reorder", "Description"}, rows)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
