package history

import (
	"bytes"
	"encoding/json"

	"github.com/ethpandaops/pagespeed-history/internal/metrics"
)

// SiteHistory is the ordered list of observations for one site.
type SiteHistory struct {
	items []item

	// raw holds the original entry when its records were missing or not a list.
	raw json.RawMessage
}

// item is one element of the records list. Elements that do not decode as a
// record keep their original bytes so a rewrite does not drop them.
type item struct {
	record metrics.Record
	raw    json.RawMessage
}

// Corrupt reports whether the entry could not be read as a records list.
func (h *SiteHistory) Corrupt() bool {
	return h.raw != nil
}

// Records returns a copy of the readable records in fetch order.
func (h *SiteHistory) Records() []metrics.Record {
	records := make([]metrics.Record, 0, len(h.items))
	for _, it := range h.items {
		if it.raw == nil {
			records = append(records, it.record)
		}
	}

	return records
}

// MarshalJSON writes {"records": [...]}, or the original bytes of a corrupt entry.
func (h *SiteHistory) MarshalJSON() ([]byte, error) {
	if h.raw != nil {
		return h.raw, nil
	}

	elems := make([]json.RawMessage, 0, len(h.items))
	for _, it := range h.items {
		if it.raw != nil {
			elems = append(elems, it.raw)
			continue
		}

		data, err := json.Marshal(it.record)
		if err != nil {
			return nil, err
		}
		elems = append(elems, data)
	}

	return json.Marshal(struct {
		Records []json.RawMessage `json:"records"`
	}{Records: elems})
}

// decodeSiteHistory reads one site entry. It never fails; problems come back
// as a warning and, when the records list itself is unusable, a corrupt entry.
func decodeSiteHistory(msg json.RawMessage) (*SiteHistory, string) {
	var entry struct {
		Records json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(msg, &entry); err != nil {
		return &SiteHistory{raw: msg}, "is not an object and will be reset on the next fetch"
	}

	if len(entry.Records) == 0 || bytes.Equal(bytes.TrimSpace(entry.Records), []byte("null")) {
		return &SiteHistory{raw: msg}, "has no records list and will be reset on the next fetch"
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(entry.Records, &elems); err != nil {
		return &SiteHistory{raw: msg}, "has records that are not a list and will be reset on the next fetch"
	}

	h := &SiteHistory{items: make([]item, 0, len(elems))}
	unreadable := 0
	for _, elem := range elems {
		var r metrics.Record
		if err := json.Unmarshal(elem, &r); err != nil {
			h.items = append(h.items, item{raw: elem})
			unreadable++
			continue
		}
		h.items = append(h.items, item{record: r})
	}

	if unreadable > 0 {
		return h, "has unreadable records which are kept but skipped"
	}

	return h, ""
}
