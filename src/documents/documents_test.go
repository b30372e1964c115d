package documents

import "testing"

func TestIsKnown(t *testing.T) {
	for _, name := range []string{"start", "descriptor", "event", "stop", "event_page", "datum_page"} {
		if !IsKnown(name) {
			t.Errorf("Expected %q to be a known document name", name)
		}
	}

	if IsKnown("checkpoint") {
		t.Error("Expected 'checkpoint' to be unknown")
	}
	if IsKnown("") {
		t.Error("Expected empty name to be unknown")
	}
}

func TestRunUID(t *testing.T) {
	tests := []struct {
		name     string
		docName  string
		doc      Document
		expected string
	}{
		{
			name:     "start document carries uid directly",
			docName:  NameStart,
			doc:      Document{"uid": "abc-123", "time": 1.0},
			expected: "abc-123",
		},
		{
			name:     "stop document references run_start",
			docName:  NameStop,
			doc:      Document{"uid": "stop-uid", "run_start": "abc-123"},
			expected: "abc-123",
		},
		{
			name:     "descriptor references run_start",
			docName:  NameDescriptor,
			doc:      Document{"run_start": "abc-123"},
			expected: "abc-123",
		},
		{
			name:     "event without run reference",
			docName:  NameEvent,
			doc:      Document{"seq_num": 4},
			expected: "",
		},
		{
			name:     "non-string uid is ignored",
			docName:  NameStart,
			doc:      Document{"uid": 42},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RunUID(tt.docName, tt.doc); got != tt.expected {
				t.Errorf("RunUID(%q, ...) = %q, want %q", tt.docName, got, tt.expected)
			}
		})
	}
}
