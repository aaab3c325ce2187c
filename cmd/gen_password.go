package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 默认生成测试账号密码，也可以从命令行传入
	plainPassword := "password123"
	if len(os.Args) > 1 {
		plainPassword = os.Args[1]
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("加密失败: %v\n", err)
		return
	}

	fmt.Printf("明文密码: %s\n", plainPassword)
	fmt.Printf("加密后的密码: %s\n", string(hashedPassword))
	fmt.Println("\n将加密后的密码复制到数据库中即可")
}
