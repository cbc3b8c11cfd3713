package collision

import "sync"

// Dialog is the caller-owned error surface a rejected drop is shown on.
type Dialog interface {
	SetTitle(title string)
	SetBody(html string)
	Center()
	Show()
}

// DialogFactory constructs the error dialog.
type DialogFactory func() Dialog

// lazyDialog builds its dialog on first use and hands out the same instance
// afterwards.
type lazyDialog struct {
	once    sync.Once
	factory DialogFactory
	dialog  Dialog
}

func (l *lazyDialog) get() Dialog {
	l.once.Do(func() {
		if l.factory != nil {
			l.dialog = l.factory()
		}
	})
	return l.dialog
}

func (l *lazyDialog) present(r Result) {
	d := l.get()
	if d == nil {
		return
	}
	d.SetTitle(r.Title)
	d.SetBody(r.Message)
	d.Center()
	d.Show()
}
