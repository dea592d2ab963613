// Command ladforge builds a memory-mappable, hierarchical LOD cluster
// asset from a flat input mesh (spec.md §6).
package main

import "github.com/oxy-go/ladforge/cmd/ladforge/cmd"

func main() {
	cmd.Execute()
}
