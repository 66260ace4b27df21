package chat

import "github.com/killallgit/sheetfreak/pkg/transcript"

// TranscriptMsg carries an assembler update into the program
type TranscriptMsg struct {
	Update transcript.Update
}

// submitDoneMsg reports that a Submit call returned
type submitDoneMsg struct {
	err error
}

type errMsg error
