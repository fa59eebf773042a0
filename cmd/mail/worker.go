package main

import (
	"log/slog"

	"github.com/wneessen/go-mail"
)

type sender interface {
	DialAndSend(messages ...*mail.Msg) error
}

type worker struct {
	from        string
	templateDir string
	client      sender
	logger      *slog.Logger
}

// handle 处理一条队列消息。返回错误时 requeue 表示消息是否应该重新入队：
// 消息本身有问题的直接丢弃，只有发送失败才重试。
func (w *worker) handle(body []byte) (requeue bool, err error) {
	mailMessage, err := decodeMailMessage(body)
	if err != nil {
		w.logger.Error("无法解析邮件信息", slog.String("error", err.Error()))
		return false, err
	}

	m, err := newMailMsg(w.from, w.templateDir, mailMessage)
	if err != nil {
		w.logger.Error("无法构建邮件", slog.String("type", mailMessage.Type), slog.String("error", err.Error()))
		return false, err
	}

	if err := w.client.DialAndSend(m); err != nil {
		w.logger.Error("邮件发送失败", slog.String("type", mailMessage.Type), slog.String("error", err.Error()))
		return true, err
	}

	w.logger.Info("邮件已发送", slog.String("type", mailMessage.Type), slog.String("to", mailMessage.To))
	return false, nil
}
