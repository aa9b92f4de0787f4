// Package gifts transfers collectible star gifts from a user account to jackpot winners.
// The account is driven through MTProto with a pre-authorised session file; a connection is
// opened for each transfer and closed before IssueAny returns.
package gifts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message/peer"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"slot-go/models"
	"slot-go/utils"
)

// DefaultMaxAttempts is one call plus one retry after a flood wait
const DefaultMaxAttempts = 2

// errNoGifts is a handled failure: the account owns nothing transferable
var errNoGifts = errors.New("no saved gifts available")

// errNotAuthorized is a handled failure: the session file is stale
var errNotAuthorized = errors.New("gift sender session is not authorized")

type transferFunc func(ctx context.Context, handle string) (string, error)

// Sender issues rewards through a Telegram user account
type Sender struct {
	appID       int
	appHash     string
	sessionPath string
	maxAttempts int
	transfer    transferFunc
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewSender checks the session artifact and prepares a sender
func NewSender(appID int, appHash, sessionPath string) (*Sender, error) {
	if _, err := os.Stat(sessionPath); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", utils.ErrSessionMissing, sessionPath, err)
	}

	s := &Sender{
		appID:       appID,
		appHash:     appHash,
		sessionPath: sessionPath,
		maxAttempts: DefaultMaxAttempts,
		sleep:       utils.SleepContext,
	}
	s.transfer = s.transferFirstGift
	return s, nil
}

// IssueAny sends the first transferable gift to the handle.
// A flood wait is honoured and retried within the attempt budget; the last answer is final.
func (s *Sender) IssueAny(ctx context.Context, handle string) (models.RewardResult, error) {
	handle = strings.TrimPrefix(handle, "@")

	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		var slug string
		slug, err = s.transfer(ctx, handle)
		if err == nil {
			return models.RewardResult{Success: true, Slug: slug}, nil
		}

		wait, flood := tgerr.AsFloodWait(err)
		if !flood || attempt == s.maxAttempts {
			break
		}
		utils.BotLogf("REWARD", "Flood wait %v before retrying gift transfer", wait)
		if err := s.sleep(ctx, wait); err != nil {
			return models.RewardResult{}, err
		}
	}

	return classify(err)
}

// classify separates failures the collaborator explains from unexpected faults
func classify(err error) (models.RewardResult, error) {
	if errors.Is(err, errNoGifts) || errors.Is(err, errNotAuthorized) {
		return models.RewardResult{Reason: err.Error()}, nil
	}
	if rpcErr, ok := tgerr.As(err); ok {
		return models.RewardResult{Reason: rpcErr.Message}, nil
	}
	return models.RewardResult{}, err
}

// transferFirstGift opens a client, transfers one gift and closes the client again
func (s *Sender) transferFirstGift(ctx context.Context, handle string) (string, error) {
	client := telegram.NewClient(s.appID, s.appHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: s.sessionPath},
		NoUpdates:      true,
	})

	var slug string
	err := client.Run(ctx, func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}
		if !status.Authorized {
			return errNotAuthorized
		}

		api := client.API()

		msgID, giftSlug, err := firstTransferable(ctx, api)
		if err != nil {
			return err
		}

		to, err := peer.DefaultResolver(api).ResolveDomain(ctx, handle)
		if err != nil {
			return fmt.Errorf("resolve @%s: %w", handle, err)
		}

		invoice := &tg.InputInvoiceStarGiftTransfer{
			Stargift: &tg.InputSavedStarGiftUser{MsgID: msgID},
			ToID:     to,
		}

		form, err := api.PaymentsGetPaymentForm(ctx, &tg.PaymentsGetPaymentFormRequest{Invoice: invoice})
		if err != nil {
			return fmt.Errorf("payment form: %w", err)
		}
		formID, ok := form.(interface{ GetFormID() int64 })
		if !ok {
			return fmt.Errorf("unexpected payment form %T", form)
		}

		if _, err := api.PaymentsSendStarsForm(ctx, &tg.PaymentsSendStarsFormRequest{
			FormID:  formID.GetFormID(),
			Invoice: invoice,
		}); err != nil {
			return fmt.Errorf("send stars form: %w", err)
		}

		slug = giftSlug
		return nil
	})
	if err != nil {
		return "", err
	}
	return slug, nil
}

// firstTransferable picks the first saved unique gift that can be referenced by message id
func firstTransferable(ctx context.Context, api *tg.Client) (int, string, error) {
	saved, err := api.PaymentsGetSavedStarGifts(ctx, &tg.PaymentsGetSavedStarGiftsRequest{
		Peer:   &tg.InputPeerSelf{},
		Offset: "",
		Limit:  100,
	})
	if err != nil {
		return 0, "", fmt.Errorf("saved gifts: %w", err)
	}

	for _, g := range saved.Gifts {
		msgID, ok := g.GetMsgID()
		if !ok {
			continue
		}
		if unique, ok := g.Gift.(*tg.StarGiftUnique); ok {
			return msgID, unique.Slug, nil
		}
	}
	return 0, "", errNoGifts
}
