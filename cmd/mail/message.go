package main

import (
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

type mailTemplate struct {
	file    string
	subject string
	newData func() any
}

// 只发送与账户相关的邮件，排班相关的事件不会发送通知
var mailTemplates = map[string]mailTemplate{
	domain.MailTypeCreateUser: {
		file:    "new_account_email.html",
		subject: "排班考勤系统 - 账户信息",
		newData: func() any { return &domain.CreateUserMailData{} },
	},
	domain.MailTypeResetPassword: {
		file:    "reset_password_otp_email.html",
		subject: "排班考勤系统 - 重置密码",
		newData: func() any { return &domain.ResetPasswordMailData{} },
	},
}

// decodeMailMessage 按邮件类型把 data 解析成对应的结构体，模板中才能用字段名访问
func decodeMailMessage(body []byte) (*domain.MailMessage, error) {
	raw := struct {
		Type string          `json:"type"`
		To   string          `json:"to"`
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	mt, ok := mailTemplates[raw.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型: %s", raw.Type)
	}

	data := mt.newData()
	if len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			return nil, err
		}
	}

	return &domain.MailMessage{Type: raw.Type, To: raw.To, Data: data}, nil
}

func newMailMsg(from, templateDir string, mailMessage *domain.MailMessage) (*mail.Msg, error) {
	mt, ok := mailTemplates[mailMessage.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型: %s", mailMessage.Type)
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(mailMessage.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}

	tmpl, err := template.ParseFiles(filepath.Join(templateDir, mt.file))
	if err != nil {
		return nil, fmt.Errorf("无法解析邮件模板: %w", err)
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, mailMessage.Data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	msg.Subject(mt.subject)

	return msg, nil
}
