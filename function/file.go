package function

import "encoding/json"

// FileData is a file transported inline, base64 encoded under "binary".
type FileData struct {
	Bytes       []byte `json:"binary"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Charset     string `json:"charset"`
}

// NewFileData wraps b with the default type and charset.
func NewFileData(b []byte) FileData {
	return FileData{
		Bytes:   b,
		Type:    "binary",
		Charset: "utf-8",
	}
}

func (f *FileData) UnmarshalJSON(b []byte) error {
	type plain FileData
	v := plain(NewFileData(nil))
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FileData(v)
	return nil
}
