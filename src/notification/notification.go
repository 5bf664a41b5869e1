package notification

import (
	"log"
	"sync"

	"anemone/src/logutil"
)

const maxNoticeLength = 300

var (
	noticeQueue chan notice
	noticeOnce  sync.Once
)

type notice struct {
	title   string
	message string
}

// Notice shows a non-blocking message. Notices are shown one at a time on a
// dedicated goroutine; when too many are pending new ones are dropped.
func Notice(title, message string) {
	message = truncate(message, maxNoticeLength)
	log.Printf("Notice: %s: %s", title, logutil.Sanitize(message, 200))

	noticeOnce.Do(func() {
		noticeQueue = make(chan notice, 4)
		go func() {
			for n := range noticeQueue {
				showNotice(n.title, n.message)
			}
		}()
	})

	select {
	case noticeQueue <- notice{title: title, message: message}:
	default:
		log.Printf("Notice: queue full, dropping %q", title)
	}
}

// Desktop delivers messages through the native dialogs.
type Desktop struct{}

func (Desktop) Notice(title, message string)        { Notice(title, message) }
func (Desktop) BlockingError(title, message string) { ShowBlockingError(title, message) }

func truncate(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes]) + "..."
}
