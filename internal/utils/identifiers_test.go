/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package utils

import (
	"testing"
)

func TestSplitQualifiedName(t *testing.T) {
	tests := []struct {
		input          string
		expectedSchema string
		expectedName   string
	}{
		{"users", "", "users"},
		{"app.users", "app", "users"},
		{"db.app.users", "db.app", "users"},
	}

	for _, test := range tests {
		schema, name := SplitQualifiedName(test.input)
		if schema != test.expectedSchema || name != test.expectedName {
			t.Errorf("SplitQualifiedName(%s) = (%s, %s); expected (%s, %s)",
				test.input, schema, name, test.expectedSchema, test.expectedName)
		}
	}
}

func TestQuoteQualified(t *testing.T) {
	quote := func(s string) string { return `"` + s + `"` }

	tests := []struct {
		input    string
		expected string
	}{
		{"users", `"users"`},
		{"app.users", `"app"."users"`},
	}

	for _, test := range tests {
		result := QuoteQualified(test.input, quote)
		if result != test.expected {
			t.Errorf("QuoteQualified(%s) = %s; expected %s", test.input, result, test.expected)
		}
	}
}

func TestQuoteLiteral(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"FREQ=DAILY", "'FREQ=DAILY'"},
		{"it's", "'it''s'"},
		{"", "''"},
		{"DBMS_MVIEW.REFRESH('A.B', 'C')", "'DBMS_MVIEW.REFRESH(''A.B'', ''C'')'"},
	}

	for _, test := range tests {
		result := QuoteLiteral(test.input)
		if result != test.expected {
			t.Errorf("QuoteLiteral(%q) = %s; expected %s", test.input, result, test.expected)
		}
	}
}
