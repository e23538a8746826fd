package model

import (
	"encoding/json"
)

// Timestamps cross the JSON boundary in TimestampLayout, the same naive
// wall-clock form the API accepts on input.

func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	return json.Marshal(struct {
		plain
		Deadline string `json:"deadline"`
	}{plain(t), FormatTimestamp(t.Deadline)})
}

func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task
	aux := struct {
		*plain
		Deadline string `json:"deadline"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Deadline == "" {
		return nil
	}
	d, err := ParseTimestamp("deadline", aux.Deadline)
	if err != nil {
		return err
	}
	t.Deadline = d
	return nil
}

func (m Meeting) MarshalJSON() ([]byte, error) {
	type plain Meeting
	return json.Marshal(struct {
		plain
		Time string `json:"time"`
	}{plain(m), FormatTimestamp(m.Time)})
}

func (m *Meeting) UnmarshalJSON(b []byte) error {
	type plain Meeting
	aux := struct {
		*plain
		Time string `json:"time"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Time == "" {
		return nil
	}
	t, err := ParseTimestamp("time", aux.Time)
	if err != nil {
		return err
	}
	m.Time = t
	return nil
}
