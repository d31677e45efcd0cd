// Command audioink transcribes local audio and video files with whisper.
package main

import "os"

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
