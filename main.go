package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"scenegraph/internal/logging"
)

var (
	good = color.New(color.FgGreen)
	bad  = color.New(color.FgRed, color.Bold)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		bad.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath    string
		noConnections bool
	)

	root := &cobra.Command{
		Use:           "scenegraph",
		Short:         "Interactive node graph editor for the terminal",
		Long:          `Drag scenes around a pannable, zoomable board and connect them with the mouse.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if noConnections {
				config.ShowConnections = false
			}

			log, closeLog, err := openLogger(config)
			if err != nil {
				return err
			}
			defer closeLog()

			m, err := initialModel(config, log)
			if err != nil {
				return err
			}
			m.measureHeader()

			p := tea.NewProgram(
				m,
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running editor: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to the TOML config file")
	root.Flags().BoolVar(&noConnections, "no-connections", false, "start with connections hidden")
	root.AddCommand(newExportCmd(&configPath))
	return root
}

func newExportCmd(configPath *string) *cobra.Command {
	var (
		pngPath string
		txtPath string
		width   int
		height  int
		scale   float64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the configured board to PNG and/or text without the editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pngPath == "" && txtPath == "" {
				return fmt.Errorf("nothing to do: pass --png and/or --txt")
			}
			if scale <= 0 {
				return fmt.Errorf("--scale must be > 0, got %v", scale)
			}
			config, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			m, err := initialModel(config, logging.NewNop())
			if err != nil {
				return err
			}
			m.width, m.height = width, height+1
			m.board.resize(m.canvasSize())
			if scale != 1 {
				m.container.ZoomTo(m.board.data, scale)
			}
			m.measureHeader()

			if pngPath != "" {
				if err := exportPNG(m.frame(), pngPath); err != nil {
					return fmt.Errorf("exporting PNG: %w", err)
				}
				good.Fprintf(cmd.OutOrStdout(), "wrote %s\n", pngPath)
			}
			if txtPath != "" {
				if err := exportText(m.renderCanvas(), txtPath); err != nil {
					return fmt.Errorf("exporting text: %w", err)
				}
				good.Fprintf(cmd.OutOrStdout(), "wrote %s\n", txtPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pngPath, "png", "", "write a PNG rendering to this path")
	cmd.Flags().StringVar(&txtPath, "txt", "", "write a text rendering to this path")
	cmd.Flags().IntVar(&width, "width", 120, "board width in cells")
	cmd.Flags().IntVar(&height, "height", 40, "board height in cells")
	cmd.Flags().Float64Var(&scale, "scale", 1, "zoom factor")
	return cmd
}

// openLogger logs to config.LogFile, or nowhere. The editor owns the
// terminal, so it never logs to stderr.
func openLogger(config *Config) (*slog.Logger, func(), error) {
	level, err := logging.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if config.LogFile == "" {
		return logging.NewNop(), func() {}, nil
	}
	f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return logging.New(level, f), func() { f.Close() }, nil
}
