package moderation

import (
	"bufio"
	"bytes"
	"io/fs"
	"path"
	"strings"
	"whatsapp-clone/errors"
)

// Dictionaries carries the censored words of every language file, for logging and for the moderator.
type Dictionaries struct {
	Words     []string
	Languages []string
}

// LoadDictionaries scans dir for .txt files, one per language, and merges their
// lines into a unique list of words.
func LoadDictionaries(fsys fs.FS, dir string) (Dictionaries, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return Dictionaries{}, err
	}

	var languages []string
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".txt" {
			continue
		}

		// "fr.txt" -> "fr"
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return Dictionaries{}, err
		}

		// A scanner handles both \n and \r\n line endings
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				uniqueWords[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return Dictionaries{}, err
		}
	}

	if len(uniqueWords) == 0 {
		return Dictionaries{}, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(uniqueWords))
	for w := range uniqueWords {
		words = append(words, w)
	}
	return Dictionaries{Words: words, Languages: languages}, nil
}
