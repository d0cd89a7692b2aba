package chatapi

import "fmt"

const (
	// StandardTestMessage is the single-turn message sent by TestStandardAPI.
	StandardTestMessage = "测试消息"

	// RecognizeImagePrompt accompanies the inline image in RecognizeImage.
	RecognizeImagePrompt = "请详细描述这张图片。例如：'这张照片显示的是一个阳光明媚的海滩，有白色的沙滩和蓝色的海水...'  请使用中文。"
)

// CharacterProfilePrompt asks for a structured character profile covering
// name, personality, appearance, era and background, and history.
func CharacterProfilePrompt(description string) string {
	return fmt.Sprintf("请根据以下描述生成一个详细的角色人设，要贴合实际，至少1000字，包含以下内容：\n"+
		"1. 角色名称\n2. 性格特点\n3. 外表特征\n4. 时代背景\n5. 人物经历\n"+
		"描述：%s\n请以清晰的格式返回。", description)
}

// PolishProfilePrompt combines a polishing instruction with the existing profile.
func PolishProfilePrompt(profile, instruction string) string {
	return fmt.Sprintf("请根据以下要求润色角色人设：\n润色要求：%s\n人设内容：%s\n"+
		"请返回润色后的完整人设。修改的内容至少500字", instruction, profile)
}
