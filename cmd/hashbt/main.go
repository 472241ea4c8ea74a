// Command hashbt prepares a leaked-password corpus into a persistent
// digest btree and answers membership queries against it.
package main

import (
	"fmt"
	"os"

	sigar "github.com/cloudfoundry/gosigar"
	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bnclabs/hashbt/api"
	"github.com/bnclabs/hashbt/btree"
	"github.com/bnclabs/hashbt/lib"
	"github.com/bnclabs/hashbt/prepare"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "hashbt",
		Short: "Build and query a persistent SHA-1 digest btree",
		Long: `hashbt turns a leaked-password corpus, one SHA-1 digest per line,
into an on-disk btree and answers "is this digest in the corpus?"
with a single logarithmic path read.`,
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var (
		inputfile  string
		outputfile string
		dbfile     string
		order      int64
		memlimit   int64
		unsorted   bool
		pretty     bool
	)

	var prepareCmd = &cobra.Command{
		Use:   "prepare",
		Short: "Build the btree from a text corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			setts := prepare.DefaultSettings()
			setts["order"] = order
			setts["memlimit"] = memlimit
			setts["sorted"] = unsorted == false

			p := prepare.NewPreparer("hashbt", inputfile, outputfile, setts)
			if err := p.Prepare(); err != nil {
				return err
			}
			mem := sigar.Mem{}
			if err := mem.Get(); err == nil {
				fmt.Printf("system memory used %v of %v\n",
					humanize.IBytes(mem.Used), humanize.IBytes(mem.Total))
			}
			fmt.Printf("%v\n", lib.Prettystats(p.Stats(), pretty))
			return nil
		},
	}
	prepareCmd.Flags().StringVar(&inputfile, "input", "", "text corpus, one hex digest per line")
	prepareCmd.Flags().StringVar(&outputfile, "output", "", "btree file to produce")
	prepareCmd.Flags().Int64Var(&order, "order", 1024, "branching order of the btree")
	prepareCmd.Flags().Int64Var(&memlimit, "memlimit", 512*1024*1024, "sort chunk size in bytes")
	prepareCmd.Flags().BoolVar(&unsorted, "unsorted", false, "corpus is not sorted, sort it first")
	prepareCmd.Flags().BoolVar(&pretty, "pretty", false, "indent the stats output")
	prepareCmd.MarkFlagRequired("input")
	prepareCmd.MarkFlagRequired("output")

	var existsCmd = &cobra.Command{
		Use:   "exists <hex-digest>",
		Short: "Check whether a digest is in the corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := api.ParseDigest(args[0])
			if err != nil {
				return err
			}
			ss, err := btree.OpenSnapshot(dbfile)
			if err != nil {
				return err
			}
			defer ss.Close()

			ok, err := ss.Contains(d)
			if err != nil {
				return err
			}
			if ok {
				fmt.Println("found")
			} else {
				fmt.Println("not found")
			}
			return nil
		},
	}
	existsCmd.Flags().StringVar(&dbfile, "db", "", "btree file produced by prepare")
	existsCmd.MarkFlagRequired("db")

	var validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check the btree file against its invariants",
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := btree.OpenSnapshot(dbfile)
			if err != nil {
				return err
			}
			defer ss.Close()

			if err := ss.Validate(); err != nil {
				return err
			}
			count, err := ss.Count()
			if err != nil {
				return err
			}
			height, err := ss.Height()
			if err != nil {
				return err
			}
			fmt.Printf("valid: %v digests, %v nodes, height %v, order %v\n",
				humanize.Comma(count), humanize.Comma(ss.NumNodes()),
				height, ss.Order())
			return nil
		},
	}
	validateCmd.Flags().StringVar(&dbfile, "db", "", "btree file produced by prepare")
	validateCmd.MarkFlagRequired("db")

	rootCmd.AddCommand(prepareCmd, existsCmd, validateCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
