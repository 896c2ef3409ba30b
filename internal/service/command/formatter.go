package command

import (
	"fmt"
	"strings"
)

type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

func (f *ResponseFormatter) Success(message string) string {
	return fmt.Sprintf("✔ %s\n", message)
}

func (f *ResponseFormatter) Notice(message string) string {
	return fmt.Sprintf("› %s\n", message)
}

func (f *ResponseFormatter) Label(label, value string) string {
	return fmt.Sprintf("%s  ›  %s\n", label, value)
}

func (f *ResponseFormatter) Usage(command string) string {
	return fmt.Sprintf("Usage: %s\n", command)
}

func (f *ResponseFormatter) List(items []string) string {
	var sb strings.Builder
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%2d. %s\n", i+1, item))
	}
	return sb.String()
}

func (f *ResponseFormatter) Section(title, content string) string {
	return fmt.Sprintf("%s\n%s\n", title, content)
}

func (f *ResponseFormatter) Combine(sections ...string) string {
	return strings.Join(sections, "\n")
}
