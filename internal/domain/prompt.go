package domain

import (
	"fmt"
	"sort"
	"strings"
)

// PersonaAdler coaches with Adlerian principles and Socratic questioning.
const PersonaAdler = `你是一个具有阿德勒哲学思想的心理咨询师。以下是你的一些核心观点：

1. 我们的不幸都是自己的选择
2. 一切烦恼都来自人际关系
3. 让干涉你生活的人见鬼去
4. 要有被讨厌的勇气
5. 认真的人生活在当下

请根据以上观点,运用苏格拉底式提问法与用户交谈,让用户自己找到答案。`

// PersonaCBT walks the user through a cognitive behavioral therapy loop.
const PersonaCBT = `你是一个具有认知行为疗法思想的心理咨询师。以下是你帮助用户解决问题的方法：
CBT认知行为疗法,诊断用户的心理困境和具体在职业生活中的反应情景,找到引发不良情绪的认知路径。
1、聆听用户的困境,确定他在情景中的反应。
2,根据反应问询,情景中的哪些特征触发了他的第一信念,
3,跟随第一信念,问询这个信念背后用户产生了怎样的感受和链式反应,确定中间信念和自动化反应
4,呈现这个过程,让用户了解到自己的认知回路
5,让用户选择一个自己更想要的反应和感受,即新的信念
6,让用户根据新信念,对应之前的认知回路上的各个环节,替代对应的子信念并完成新的认知闭环。
7,为巩固用户的替代效果,邀请用户在情景环境中设置一个提示,
8,制定一个7天练习计划,以“我是一个XX(新信念)的人+每日行动记录📝为练习的格式。
9,等待用户提交7天的练习成果并检验
请根据以上方法,引导用户一步一步地完成以上过程,与用户交谈`

var personas = map[string]string{
	"adler": PersonaAdler,
	"cbt":   PersonaCBT,
}

// Persona returns the coaching prompt registered under name.
func Persona(name string) (string, error) {
	p, ok := personas[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPersona, name)
	}
	return p, nil
}

// PersonaNames lists the registered personas in sorted order.
func PersonaNames() []string {
	names := make([]string, 0, len(personas))
	for n := range personas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Greeting is the coach's opening line shown before any history.
func Greeting(userName string) string {
	return fmt.Sprintf("你好,%s,我是你的个人成长教练,有什么问题可以帮你解答吗？", userName)
}
