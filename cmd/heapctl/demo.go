package main

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/heap"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newDemoCmd())
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through a guided allocate/free scenario",
		Long: `The demo command allocates three blocks, frees the middle two so they
coalesce into a single hole, then reuses part of the hole with a smaller
allocation. The block chain is printed after each step.

Example:
  heapctl demo
  heapctl demo --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
	return cmd
}

func runDemo() error {
	h := heap.New(arena.NewMem())

	step := func(label string) error {
		printInfo("== %s\n", label)
		if err := h.Check(); err != nil {
			return fmt.Errorf("chain check failed after %q: %w", label, err)
		}
		if jsonOut {
			return printJSON(h.Blocks())
		}
		if !quiet {
			h.Dump(os.Stdout)
		}
		return nil
	}

	a, bufA, err := h.Alloc(64)
	if err != nil {
		return err
	}
	copy(bufA, []byte("first block payload"))
	printVerbose("allocated a at 0x%08X (%d bytes)\n", a, len(bufA))

	b, bufB, err := h.Alloc(32)
	if err != nil {
		return err
	}
	copy(bufB, []byte("second block"))
	printVerbose("allocated b at 0x%08X (%d bytes)\n", b, len(bufB))

	c, bufC, err := h.Alloc(48)
	if err != nil {
		return err
	}
	copy(bufC, []byte("third block"))
	printVerbose("allocated c at 0x%08X (%d bytes)\n", c, len(bufC))

	if err := step("after three allocations"); err != nil {
		return err
	}

	h.Free(b)
	h.Free(c)
	if err := step("after freeing b and c (neighbors merge)"); err != nil {
		return err
	}

	d, bufD, err := h.Alloc(16)
	if err != nil {
		return err
	}
	copy(bufD, []byte("reused hole"))
	printVerbose("allocated d at 0x%08X inside the merged hole\n", d)
	if err := step("after reusing part of the hole"); err != nil {
		return err
	}

	h.Free(d)
	h.Free(a)
	if err := step("after freeing everything"); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(h.Stats())
	}
	st := h.Stats()
	printInfo("stats: allocs=%d frees=%d grows=%d (%d bytes) splits=%d merges=%d/%d\n",
		st.AllocCalls, st.FreeCalls, st.GrowCalls, st.GrowBytes,
		st.SplitCount, st.CoalesceForward, st.CoalesceBackward)
	return nil
}
