package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/library"
)

var libCmd = &cobra.Command{
	Use:   "lib",
	Short: "Symbol library operations",
	Long:  `Commands for working with FidoCadJ symbol libraries (.fcl)`,
}

var libListCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the macros of the libraries",
	Long: `List every macro grouped by library and category. Without dir the
configured library directory is read, or the built-in libraries.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLibList,
}

var libShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print the definition of a macro",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibShow,
}

var libCacheCmd = &cobra.Command{
	Use:   "cache <out.msgpack>",
	Short: "Write the libraries to a msgpack cache",
	Long: `Read the configured libraries and store them in a single msgpack file.
Point cache_file in the configuration to it to skip scanning directories.`,
	Args: cobra.ExactArgs(1),
	RunE: runLibCache,
}

func init() {
	rootCmd.AddCommand(libCmd)
	libCmd.AddCommand(libListCmd)
	libCmd.AddCommand(libShowCmd)
	libCmd.AddCommand(libCacheCmd)
}

func runLibList(cmd *cobra.Command, args []string) error {
	var (
		lib library.Library
		err error
	)
	if len(args) == 1 {
		lib = library.New()
		if err := library.LoadDirectory(args[0], lib); err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
	} else if lib, err = loadLibrary(); err != nil {
		return err
	}

	// Group by library, then category
	groups := make(map[string]map[string][]*library.MacroDesc)
	for _, m := range lib {
		if groups[m.Library] == nil {
			groups[m.Library] = make(map[string][]*library.MacroDesc)
		}
		groups[m.Library][m.Category] = append(groups[m.Library][m.Category], m)
	}

	for _, name := range lib.Libraries() {
		fmt.Printf("%s\n", name)
		cats := make([]string, 0, len(groups[name]))
		for c := range groups[name] {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			fmt.Printf("  %s\n", c)
			macros := groups[name][c]
			sort.Slice(macros, func(i, j int) bool { return macros[i].Key < macros[j].Key })
			for _, m := range macros {
				fmt.Printf("    %-24s %s\n", m.Key, m.Name)
			}
		}
	}
	fmt.Printf("\n%d macros\n", len(lib))
	return nil
}

func runLibShow(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary()
	if err != nil {
		return err
	}
	m, ok := lib.Lookup(args[0])
	if !ok {
		return fmt.Errorf("macro '%s' not found", args[0])
	}

	fmt.Printf("Macro: %s\n", m.Key)
	fmt.Printf("Name: %s\n", m.Name)
	fmt.Printf("Library: %s\n", m.Library)
	fmt.Printf("Category: %s\n", m.Category)
	if library.IsStandard(m.Key) {
		fmt.Println("Standard: yes")
	}
	fmt.Println()
	fmt.Println(strings.TrimPrefix(m.Description, "\n"))
	return nil
}

func runLibCache(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary()
	if err != nil {
		return err
	}
	if err := library.SaveCacheFile(args[0], lib); err != nil {
		return fmt.Errorf("error writing cache: %w", err)
	}
	fmt.Printf("Wrote %d macros to %s\n", len(lib), args[0])
	return nil
}
