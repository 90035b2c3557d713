package utils

import (
	"encoding/json"
	"fmt"
	"time"
)

// Форматы, в которых бэкенд присылает время. Первый подходящий выигрывает.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// RFC3339Date разбирает время один раз при декодировании ответа.
// Пустая строка и null дают нулевое время.
type RFC3339Date struct {
	time.Time
}

func (d RFC3339Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(time.RFC3339))
}

func (d *RFC3339Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		d.Time = time.Time{}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	t, err := ParseDate(str)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDate пробует все известные форматы.
func ParseDate(str string) (time.Time, error) {
	if str == "" {
		return time.Time{}, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format: %q", str)
}

// Ms возвращает unix-время в миллисекундах, для нулевого времени 0.
func (d RFC3339Date) Ms() int64 {
	if d.Time.IsZero() {
		return 0
	}
	return d.Time.UnixMilli()
}
