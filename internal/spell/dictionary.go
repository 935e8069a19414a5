// Package spell implements a word-frequency spelling corrector.
//
// Correction follows the classic edit-distance approach: a known word is its
// own correction; otherwise the most frequent known word one edit away wins,
// then the most frequent known word two edits away. Ties are broken by
// lexical order so results are deterministic. Words with no known candidate
// get no suggestion.
//
// Default layers a job title vocabulary over English word frequencies, so
// ordinary words such as "chef" or "dean" are known and left alone.
//
// Lookups are case-insensitive: input is NFC-normalized and lower-cased with
// golang.org/x/text before it is compared, and corrections are returned in
// that folded form.
package spell

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

//go:embed english.txt.gz
var englishWords []byte

//go:embed words.txt
var defaultWords string

// Dictionary maps folded words to their frequency. The zero value is empty
// and usable. A Dictionary is not safe for concurrent mutation.
type Dictionary struct {
	freq    map[string]int
	letters []rune
	longest int
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{freq: map[string]int{}}
}

// Default returns the dictionary built from the embedded English word
// frequencies plus the job title vocabulary.
func Default() *Dictionary {
	d := New()
	// The embedded lists are fixed at build time; a parse failure is a bug.
	if err := readGzip(bytes.NewReader(englishWords), d.ReadWordList); err != nil {
		panic(fmt.Sprintf("spell: embedded english.txt.gz: %v", err))
	}
	if err := d.ReadWordList(strings.NewReader(defaultWords)); err != nil {
		panic(fmt.Sprintf("spell: embedded words.txt: %v", err))
	}
	return d
}

// Load reads a dictionary from path. Files ending in .json must contain a
// {"word": count} object; anything else is read as a word list. A trailing
// .gz ("en.json.gz") is decompressed first.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("spell: open %s: %w", path, err)
	}
	defer f.Close()

	d := New()
	read := d.ReadWordList
	name := path
	gzipped := strings.EqualFold(filepath.Ext(name), ".gz")
	if gzipped {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if strings.EqualFold(filepath.Ext(name), ".json") {
		read = d.ReadJSON
	}
	if gzipped {
		err = readGzip(f, read)
	} else {
		err = read(f)
	}
	if err != nil {
		return nil, fmt.Errorf("spell: load %s: %w", path, err)
	}
	return d, nil
}

func readGzip(r io.Reader, read func(io.Reader) error) error {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()
	return read(zr)
}

// ReadWordList adds entries from r. Each non-blank line holds a word and an
// optional count ("engineer 1200"); a missing count means 1. Lines starting
// with # are comments.
func (d *Dictionary) ReadWordList(r io.Reader) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		count := 1
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 {
				return fmt.Errorf("line %d: invalid count %q", line, fields[1])
			}
			count = n
		}
		d.Add(fields[0], count)
	}
	return sc.Err()
}

// ReadJSON adds entries from a {"word": count} object.
func (d *Dictionary) ReadJSON(r io.Reader) error {
	var m map[string]int
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	for w, n := range m {
		d.Add(w, n)
	}
	return nil
}

// Add increases the frequency of word by count.
func (d *Dictionary) Add(word string, count int) {
	w := fold(word)
	if w == "" {
		return
	}
	if d.freq == nil {
		d.freq = map[string]int{}
	}
	if _, ok := d.freq[w]; !ok {
		d.addLetters(w)
		if n := utf8.RuneCountInString(w); n > d.longest {
			d.longest = n
		}
	}
	d.freq[w] += count
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int { return len(d.freq) }

// Known reports whether word (after folding) is in the dictionary.
func (d *Dictionary) Known(word string) bool {
	_, ok := d.freq[fold(word)]
	return ok
}

// Frequency returns the count for word, or 0.
func (d *Dictionary) Frequency(word string) int { return d.freq[fold(word)] }

// Correction returns the most likely spelling of token. Numbers, lone
// punctuation, "nan" and tokens far longer than any known word are returned
// unchanged. ok=false means there is no suggestion. The method value fits
// normalize.SpellFunc.
func (d *Dictionary) Correction(token string) (string, bool) {
	if !d.shouldCheck(token) {
		return token, true
	}
	w := fold(token)
	if _, ok := d.freq[w]; ok {
		return w, true
	}
	if best, ok := d.best(d.edits1(w)); ok {
		return best, true
	}
	if best, ok := d.best(d.knownEdits2(w)); ok {
		return best, true
	}
	return "", false
}

func (d *Dictionary) shouldCheck(token string) bool {
	n := utf8.RuneCountInString(token)
	if n == 1 {
		r, _ := utf8.DecodeRuneInString(token)
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return false
		}
	}
	if n > d.longest+3 {
		return false
	}
	if strings.EqualFold(token, "nan") {
		return false
	}
	if _, err := strconv.ParseFloat(token, 64); err == nil {
		return false
	}
	return true
}

// best picks the most frequent known candidate; ties go to the lexically
// smallest word.
func (d *Dictionary) best(cands []string) (string, bool) {
	var (
		word  string
		count = -1
	)
	for _, c := range cands {
		n, ok := d.freq[c]
		if !ok {
			continue
		}
		if n > count || (n == count && c < word) {
			word, count = c, n
		}
	}
	return word, count >= 0
}

// edits1 returns every string one delete, transpose, replace or insert away
// from w, using the dictionary's alphabet.
func (d *Dictionary) edits1(w string) []string {
	rs := []rune(w)
	out := make([]string, 0, len(rs)*(2*len(d.letters)+2)+len(d.letters))
	for i := 0; i <= len(rs); i++ {
		left, right := rs[:i], rs[i:]
		if len(right) > 0 {
			out = append(out, string(left)+string(right[1:]))
		}
		if len(right) > 1 {
			out = append(out, string(left)+string(right[1])+string(right[0])+string(right[2:]))
		}
		for _, c := range d.letters {
			if len(right) > 0 && right[0] != c {
				out = append(out, string(left)+string(c)+string(right[1:]))
			}
			out = append(out, string(left)+string(c)+string(right))
		}
	}
	return out
}

// knownEdits2 returns the known words two edits away from w.
func (d *Dictionary) knownEdits2(w string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, e1 := range d.edits1(w) {
		for _, e2 := range d.edits1(e1) {
			if _, ok := d.freq[e2]; !ok {
				continue
			}
			if _, dup := seen[e2]; dup {
				continue
			}
			seen[e2] = struct{}{}
			out = append(out, e2)
		}
	}
	return out
}

// addLetters merges the runes of w into the sorted alphabet.
func (d *Dictionary) addLetters(w string) {
	for _, r := range w {
		i := sort.Search(len(d.letters), func(i int) bool { return d.letters[i] >= r })
		if i < len(d.letters) && d.letters[i] == r {
			continue
		}
		d.letters = append(d.letters, 0)
		copy(d.letters[i+1:], d.letters[i:])
		d.letters[i] = r
	}
}

func fold(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(s)))
}
