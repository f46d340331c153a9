package payload

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Record is one row of a dataset as it travels: canonical column -> value,
// with missing cells left out.
type Record map[string]interface{}

// Entry is one keyed dataset of the data_list
type Entry struct {
	Key     string
	Records []Record
}

// DataList is the data_list object. Keys go out in slice order, which a
// plain map cannot guarantee.
type DataList []Entry

// Keys returns the entry keys in wire order
func (l DataList) Keys() []string {
	keys := make([]string, len(l))
	for i, e := range l {
		keys[i] = e.Key
	}
	return keys
}

// Get returns the records stored under key
func (l DataList) Get(key string) ([]Record, bool) {
	for _, e := range l {
		if e.Key == key {
			return e.Records, true
		}
	}
	return nil, false
}

// MarshalJSON writes the entries as one object in slice order
func (l DataList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		records := e.Records
		if records == nil {
			records = []Record{}
		}
		value, err := marshal(records)
		if err != nil {
			return nil, fmt.Errorf("data_list %s: %w", e.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object back keeping document order
func (l *DataList) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("data_list is not valid JSON")
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return fmt.Errorf("data_list must be an object, got %s", parsed.Type)
	}

	var out DataList
	var err error
	parsed.ForEach(func(key, value gjson.Result) bool {
		var records []Record
		if err = json.Unmarshal([]byte(value.Raw), &records); err != nil {
			err = fmt.Errorf("data_list %s: %w", key.String(), err)
			return false
		}
		out = append(out, Entry{Key: key.String(), Records: records})
		return true
	})
	if err != nil {
		return err
	}
	*l = out
	return nil
}
