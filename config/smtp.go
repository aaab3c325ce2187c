package config

// SMTPConfig 邮件发送配置。
// 只用于尽力而为的通知邮件（注册欢迎、邮箱变更提醒），失败不影响主流程。
type SMTPConfig struct {
	Host     string `json:"host" yaml:"host"`         // SMTP 服务器地址
	Port     int    `json:"port" yaml:"port"`         // SMTP 端口
	Username string `json:"username" yaml:"username"` // 登录用户名
	Password string `json:"password" yaml:"password"` // 登录密码
	From     string `json:"from" yaml:"from"`         // 发件人地址
	Enabled  bool   `json:"enabled" yaml:"enabled"`   // 是否启用（本地开发默认关闭）
}

// DefaultSMTPConfig 返回本地开发的默认配置
func DefaultSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:    "localhost",
		Port:    1025,
		From:    "no-reply@clipserver.local",
		Enabled: false,
	}
}
