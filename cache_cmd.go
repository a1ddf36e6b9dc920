package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lessonforge/lessonforge/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the narration audio cache",
	Long: paragraph(
		fmt.Sprintf("\nShow what the %s holds. Cached narration makes previews free: scenes whose text and voice are unchanged never re-synthesize.", keyword("audio cache")),
	),
	Args: cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		printCacheStats(c)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached narration audio",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		before := c.Stats()
		if err := c.Clear(); err != nil {
			return err
		}
		fmt.Printf("Cleared %d entries (%s)\n", before.ItemCount, humanize.Bytes(uint64(before.Size)))
		return nil
	},
}

func printCacheStats(c *cache.AudioCache) {
	s := c.Stats()
	fmt.Println("Audio cache:", c.Dir())
	fmt.Printf("  entries:  %d\n", s.ItemCount)
	fmt.Printf("  size:     %s of %s\n", humanize.Bytes(uint64(s.Size)), humanize.Bytes(uint64(s.Capacity)))
	if s.Hits+s.Misses > 0 {
		fmt.Printf("  hit rate: %.0f%% (%d hits, %d misses, %d evictions)\n",
			s.HitRate*100, s.Hits, s.Misses, s.Evictions)
	}
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}
