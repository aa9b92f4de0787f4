package slots

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"slot-go/models"
)

type sentMessage struct {
	ChatID int64
	Text   string
	HTML   bool
}

type deletion struct {
	ChatID    int64
	MessageID int
}

type panelCall struct {
	ChatID    int64
	MessageID int
	Text      string
	Active    bool
}

type callbackAnswer struct {
	ID    string
	Text  string
	Alert bool
}

type fakeTransport struct {
	mutex sync.Mutex

	nextID      int
	diceValues  []int
	diceErr     error
	editErr     error
	restrictErr error
	deleteErr   map[int]error
	// beforeDelete runs once, outside the lock, at the start of the next deletion
	beforeDelete func(messageID int)

	sent      []sentMessage
	dice      []int64
	deleted   []deletion
	panels    []panelCall
	edits     []panelCall
	answers   []callbackAnswer
	restricts []time.Time
	events    []string
}

func newFakeTransport(values ...int) *fakeTransport {
	return &fakeTransport{nextID: 1000, diceValues: values, deleteErr: map[int]error{}}
}

func (ft *fakeTransport) id() int {
	ft.nextID++
	return ft.nextID
}

func (ft *fakeTransport) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	ft.mutex.Lock()
	defer ft.mutex.Unlock()
	ft.sent = append(ft.sent, sentMessage{ChatID: chatID, Text: text})
	ft.events = append(ft.events, "send:"+text)
	return ft.id(), nil
}

func (ft *fakeTransport) SendHTML(ctx context.Context, chatID int64, text string) (int, error) {
	ft.mutex.Lock()
	defer ft.mutex.Unlock()
	ft.sent = append(ft.sent, sentMessage{ChatID: chatID, Text: text, HTML: true})
	ft.events = append(ft.events, "send:"+text)
	return ft.id(), nil
}

func (ft *fakeTransport) SendSlotDice(ctx context.Context, chatID int64) (int, int, error) {
	ft.mutex.Lock()
	defer ft.mutex.Unlock()
	if ft.diceErr != nil {
		return 0, 0, ft.diceErr
	}
	ft.dice = append(ft.dice, chatID)
	ft.events = append(ft.events, "dice")
	value := 1
	if len(ft.diceValues) > 0 {
		value = ft.diceValues[0]
		ft.diceValues = ft.diceValues[1:]
	}
	return ft.id(), value, nil
}

func (ft *fakeTransport) record(event string) {
	ft.mutex.Lock()
	defer ft.mutex.Unlock()
	ft.events = append(ft.events, event)
}

func (ft *fakeTransport) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	ft.mutex.Lock()
	hook := ft.beforeDelete
	ft.beforeDelete = nil
	ft.mutex.Unlock()
	if hook != nil {
		hook(messageID)
	}

	ft.mutex.Lock()
	defer ft.mutex.Unlock()
	ft.deleted = append(ft.deleted, deletion{ChatID: chatID, MessageID: messageID})
	ft.events = append(ft.events, "delete")
	return ft.deleteErr[messageID]
}

func (ft *fakeTransport) SendPanel(ctx context.Context, chatID int64, text string, active bool) (int, error) {
	ft.mutex.Lock()
	defer ft.mutex.Unlock()
	id := ft.id()
	ft.panels = append(ft.panels, panelCall{ChatID: chatID, MessageID: id, Text: text, Active: active})
	return id, nil
}

func (ft *fakeTransport) EditPanel(ctx context.Context, chatID int64, messageID int, text string, active bool) error {
	ft.mutex.Lock()
	defer ft.mutex.Unlock()
	if ft.editErr != nil {
		return ft.editErr
	}
	ft.edits = append(ft.edits, panelCall{ChatID: chatID, MessageID: messageID, Text: text, Active: active})
	return nil
}

func (ft *fakeTransport) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	ft.mutex.Lock()
	defer ft.mutex.Unlock()
	ft.answers = append(ft.answers, callbackAnswer{ID: callbackID, Text: text, Alert: alert})
	return nil
}

func (ft *fakeTransport) RestrictChat(ctx context.Context, chatID int64, until time.Time) error {
	ft.mutex.Lock()
	defer ft.mutex.Unlock()
	ft.events = append(ft.events, "restrict")
	if ft.restrictErr != nil {
		return ft.restrictErr
	}
	ft.restricts = append(ft.restricts, until)
	return nil
}

// textsTo returns every text sent to a chat, in order
func (ft *fakeTransport) textsTo(chatID int64) []string {
	ft.mutex.Lock()
	defer ft.mutex.Unlock()
	var out []string
	for _, m := range ft.sent {
		if m.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

func (ft *fakeTransport) deletedIDs(chatID int64) []int {
	ft.mutex.Lock()
	defer ft.mutex.Unlock()
	var out []int
	for _, d := range ft.deleted {
		if d.ChatID == chatID {
			out = append(out, d.MessageID)
		}
	}
	return out
}

func (ft *fakeTransport) lastAnswer() callbackAnswer {
	ft.mutex.Lock()
	defer ft.mutex.Unlock()
	if len(ft.answers) == 0 {
		return callbackAnswer{}
	}
	return ft.answers[len(ft.answers)-1]
}

func (ft *fakeTransport) indexOf(prefix string) int {
	ft.mutex.Lock()
	defer ft.mutex.Unlock()
	for i, e := range ft.events {
		if strings.HasPrefix(e, prefix) {
			return i
		}
	}
	return -1
}

type memoryStore struct {
	mutex   sync.Mutex
	initial models.SlotState
	saved   []models.SlotState
	saveErr error
	// events receives "save" for every successful save
	events func(event string)
}

func (ms *memoryStore) Load() models.SlotState {
	return ms.initial
}

func (ms *memoryStore) Save(state models.SlotState) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	if ms.saveErr != nil {
		return ms.saveErr
	}
	ms.saved = append(ms.saved, state)
	if ms.events != nil {
		ms.events("save")
	}
	return nil
}

func (ms *memoryStore) last() (models.SlotState, bool) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	if len(ms.saved) == 0 {
		return models.SlotState{}, false
	}
	return ms.saved[len(ms.saved)-1], true
}

type fakeIssuer struct {
	mutex   sync.Mutex
	result  models.RewardResult
	err     error
	panics  bool
	handles []string
}

func (fi *fakeIssuer) IssueAny(ctx context.Context, handle string) (models.RewardResult, error) {
	fi.mutex.Lock()
	fi.handles = append(fi.handles, handle)
	fi.mutex.Unlock()
	if fi.panics {
		panic("connection exploded")
	}
	return fi.result, fi.err
}

type fakeJournal struct {
	mutex    sync.Mutex
	records  []models.SpinRecord
	jackpots int64
	err      error
}

func (fj *fakeJournal) RecordSpin(ctx context.Context, rec models.SpinRecord) error {
	fj.mutex.Lock()
	defer fj.mutex.Unlock()
	fj.records = append(fj.records, rec)
	return fj.err
}

func (fj *fakeJournal) CountJackpots(ctx context.Context) (int64, error) {
	return fj.jackpots, fj.err
}

type fakeMirror struct {
	mutex sync.Mutex
	texts []string
}

func (fm *fakeMirror) Notify(ctx context.Context, text string) error {
	fm.mutex.Lock()
	defer fm.mutex.Unlock()
	fm.texts = append(fm.texts, text)
	return nil
}

var errBoom = errors.New("boom")
