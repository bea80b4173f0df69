package engine

import (
	"strings"

	"github.com/coffersTech/logserv/internal/model"
	"github.com/coffersTech/logserv/internal/storage"
)

// Search runs one bounded scan of filename per opts, matching the Search
// Engine contract: pull lines newest-first, decode them (lossily) as
// UTF-8, apply the substring filter, and stop at opts.MaxResults.
func Search(filename string, opts model.SearchOptions) (model.LocalResult, error) {
	end := int64(-1)
	if opts.ResumeFrom != nil {
		end = *opts.ResumeFrom
	}

	cr, err := storage.Open(filename, end)
	if err != nil {
		return model.LocalResult{}, err
	}
	scanner := NewScanner(cr)
	defer scanner.Close()

	var earliestOffset int64
	entries := []string{}

	for {
		line, ok, err := scanner.Next()
		if err != nil {
			return model.LocalResult{}, err
		}
		if !ok {
			break
		}

		earliestOffset = line.Offset

		if len(line.Bytes) == 0 {
			continue
		}

		text := strings.ToValidUTF8(string(line.Bytes), "�")
		if !MatchQuery(opts.Query, text) {
			continue
		}

		entries = append(entries, text)
		if len(entries) == opts.MaxResults {
			break
		}
	}

	// The oldest line in any file starts at offset 0, so reaching it means
	// there is nothing strictly older left to scan.
	result := model.LocalResult{Entries: entries}
	if earliestOffset != 0 {
		offset := earliestOffset
		result.ResumeFrom = &offset
	}
	return result, nil
}
