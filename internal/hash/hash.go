// Package hash computes algorithm-tagged content hashes of book files.
package hash

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Algorithm is a supported hashing algorithm.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA256 Algorithm = "sha256"
)

// Parse maps a flag value to an Algorithm.
func Parse(s string) (Algorithm, error) {
	switch strings.ToLower(s) {
	case "md5":
		return MD5, nil
	case "sha256":
		return SHA256, nil
	}
	return "", fmt.Errorf("invalid hash algorithm '%s', must be 'md5' or 'sha256'", s)
}

// Detect extracts the algorithm from an existing tagged hash such as
// "sha256:...".
func Detect(tagged string) (Algorithm, error) {
	prefix, _, ok := strings.Cut(tagged, ":")
	if !ok {
		return "", fmt.Errorf("cannot detect algorithm from hash '%s'", tagged)
	}
	return Parse(prefix)
}

func (a Algorithm) new() hash.Hash {
	switch a {
	case MD5:
		return md5.New()
	case SHA256:
		return sha256.New()
	}
	panic(fmt.Sprintf("hash: unknown algorithm '%s'", a))
}

// File hashes one file and returns the algorithm-tagged hex digest.
func File(path string, algo Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot read '%s': %w", path, err)
	}
	defer f.Close()

	h := algo.new()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("cannot hash '%s': %w", path, err)
	}
	return string(algo) + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

// Files hashes every path concurrently, one worker per CPU. Each unit of
// work reads one file and returns one digest; workers share nothing.
func Files(paths []string, algo Algorithm) (map[string]string, error) {
	type result struct {
		path   string
		digest string
		err    error
	}

	jobs := make(chan string)
	results := make(chan result, len(paths))

	var wg sync.WaitGroup
	for range runtime.NumCPU() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				digest, err := File(path, algo)
				results <- result{path: path, digest: digest, err: err}
			}
		}()
	}

	for _, path := range paths {
		jobs <- path
	}
	close(jobs)
	wg.Wait()
	close(results)

	digests := make(map[string]string, len(paths))
	for r := range results {
		if r.err != nil {
			return nil, r.err
		}
		digests[r.path] = r.digest
	}
	return digests, nil
}
