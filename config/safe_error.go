package config

// SafeErrorMessage 根据运行模式决定返回给客户端的错误信息
// release 模式下返回 fallback，避免向客户端泄露内部错误详情；
// debug / 未初始化配置时返回原始错误，方便开发排查
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
