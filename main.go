package main

import "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/cli"

func main() {
	cli.Execute()
}
