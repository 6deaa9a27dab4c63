package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxFuzzInput = 1 << 16 // 64 KiB
	maxSeedBytes = 16 << 10
)

// inlineSeeds cover every surface construct at least once.
var inlineSeeds = []string{
	``,
	`1`,
	`let x = 1 in x + "a"`,
	`fun x -> x`,
	`let id = fun x -> x in id 5`,
	`let f = fun (x : Int) -> x + 1 in f 2`,
	`let g = fun (x : Int) -> x * 2 in g "s"`,
	`{a = 1, b = [true, false], c = {d = "e"}}.c.d`,
	`if 1 < 2 && !false then "yes" else "no"`,
	`forall a. a -> a`,
	`let T : Type = Int -> Int in (fun x -> x : T)`,
	`(n : Int) -> Int`,
	`@show({a = 1}) ++ @upper("x")`,
	`@print("hi")`,
	`let u = @env("HOME") in @strlen(u)`,
	`[1, 2, 3]`,
	`# comment only`,
	`let x = in x`,
	`(1 +`,
	`{a = }`,
	`"unterminated`,
	`10 / 0`,
	`-(3 - 5) % 2`,
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.ll файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".ll" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clamp(src, maxSeedBytes))
		return nil
	})
}

func clamp(input []byte, limit int) []byte {
	if len(input) > limit {
		input = input[:limit]
	}
	return append([]byte(nil), input...)
}
