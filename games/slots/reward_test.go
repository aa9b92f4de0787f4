package slots

import (
	"errors"

	"github.com/stretchr/testify/assert"

	"slot-go/models"
	"slot-go/utils"
)

func (s *SessionTestSuite) jackpot(initial uint64, issuer *fakeIssuer, handle string) *Session {
	session := s.newSession(models.SlotState{Active: true, TotalSpins: initial}, Options{Issuer: issuer})
	s.transport.diceValues = []int{utils.JackpotValue}

	msg := s.groupMessage(testGroupID, "/spin")
	msg.SenderHandle = handle
	session.Spin(s.ctx, msg)
	return session
}

func (s *SessionTestSuite) TestRewardIssued() {
	issuer := &fakeIssuer{result: models.RewardResult{Success: true, Slug: "PlushPepe-42"}}
	s.jackpot(0, issuer, "lucky")

	s.Equal([]string{"lucky"}, issuer.handles)
	s.Contains(s.transport.textsTo(testGroupID), "🎁 @lucky получает подарок: PlushPepe-42")
	s.Contains(s.transport.textsTo(adminOne), "Подарок PlushPepe-42 отправлен пользователю @lucky.")
}

func (s *SessionTestSuite) TestRewardHandledFailureKeepsWinAndCounter() {
	issuer := &fakeIssuer{result: models.RewardResult{Reason: "no saved gifts available"}}
	session := s.jackpot(7, issuer, "lucky")

	groupTexts := s.transport.textsTo(testGroupID)
	s.Contains(groupTexts, "💎 @lucky, ДЖЕКПОТ!")
	s.Contains(groupTexts, "😔 @lucky, к сожалению, подарок отправить не удалось. Администраторы уже уведомлены.")
	s.Contains(s.transport.textsTo(adminOne), "Не удалось отправить подарок @lucky: no saved gifts available")
	s.Equal(uint64(8), session.Snapshot().TotalSpins)
}

func (s *SessionTestSuite) TestRewardUnexpectedFailure() {
	issuer := &fakeIssuer{err: errBoom}
	s.jackpot(0, issuer, "lucky")

	s.Contains(s.transport.textsTo(adminOne), "Непредвиденная ошибка при отправке подарка @lucky: boom")
	s.Contains(s.transport.textsTo(testGroupID), "😔 @lucky, к сожалению, подарок отправить не удалось. Администраторы уже уведомлены.")
}

func (s *SessionTestSuite) TestRewardPanicIsReportedAsUnexpected() {
	issuer := &fakeIssuer{panics: true}
	session := s.jackpot(0, issuer, "lucky")

	admin := s.transport.textsTo(adminOne)
	s.True(containsPrefix(admin, "Непредвиденная ошибка при отправке подарка @lucky: reward issuer panic"))
	s.Equal(uint64(1), session.Snapshot().TotalSpins)
}

func (s *SessionTestSuite) TestRewardSkippedWithoutHandle() {
	issuer := &fakeIssuer{result: models.RewardResult{Success: true, Slug: "x"}}
	s.jackpot(0, issuer, "")

	s.Empty(issuer.handles)
	s.Contains(s.transport.textsTo(adminOne), `Победитель <a href="tg://user?id=77">Игрок</a> не имеет username, подарок не отправлен.`)
	s.Contains(s.transport.textsTo(testGroupID), `😔 <a href="tg://user?id=77">Игрок</a>, к сожалению, подарок отправить не удалось. Администраторы уже уведомлены.`)
	s.Len(s.transport.restricts, 1, "the mute still happens")
}

func (s *SessionTestSuite) TestMuteFailureDoesNotStopReward() {
	s.transport.restrictErr = errBoom
	issuer := &fakeIssuer{result: models.RewardResult{Success: true, Slug: "x"}}
	s.jackpot(0, issuer, "lucky")

	s.Contains(s.transport.textsTo(adminOne), utils.MuteFailed)
	s.NotContains(s.transport.textsTo(testGroupID), utils.MuteAnnouncement)
	s.Equal([]string{"lucky"}, issuer.handles)
}

func (s *SessionTestSuite) TestAdminsNotifiedAfterRewardSideEffects() {
	issuer := &fakeIssuer{result: models.RewardResult{Success: true, Slug: "x"}}
	s.jackpot(0, issuer, "lucky")

	admin := s.transport.textsTo(adminOne)
	s.Require().NotEmpty(admin)
	assert.Equal(s.T(), "Пользователь @lucky сыграл в слот. Результат: 💎 @lucky, ДЖЕКПОТ!\nОбщее количество круток: 1", admin[len(admin)-1])
}

func (s *SessionTestSuite) TestRewardFaultTextIsEscaped() {
	issuer := &fakeIssuer{result: models.RewardResult{Reason: "balance < 25 & fee"}}
	s.jackpot(0, issuer, "lucky")

	s.Contains(s.transport.textsTo(adminOne), "Не удалось отправить подарок @lucky: balance &lt; 25 &amp; fee")

	s.SetupTest()
	s.jackpot(0, &fakeIssuer{err: errors.New("unexpected <nil> payload")}, "lucky")
	s.Contains(s.transport.textsTo(adminOne), "Непредвиденная ошибка при отправке подарка @lucky: unexpected &lt;nil&gt; payload")
}

func (s *SessionTestSuite) TestRewardSentAfterJackpotText() {
	issuer := &fakeIssuer{result: models.RewardResult{Success: true, Slug: "PlushPepe-42"}}
	s.jackpot(0, issuer, "lucky")

	s.Less(s.transport.indexOf("restrict"), s.transport.indexOf("send:💎"))
	s.Less(s.transport.indexOf("send:💎"), s.transport.indexOf("send:🎁"))
}

func containsPrefix(texts []string, prefix string) bool {
	for _, t := range texts {
		if len(t) >= len(prefix) && t[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
