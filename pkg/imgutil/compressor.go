package imgutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

// CompressThresholdBytes を超える参照画像のみ再圧縮の対象にします。
// これより小さい画像は再エンコードしても転送量の節約にならないためです。
const CompressThresholdBytes = 512 * 1024

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式に再圧縮します。
// image.Decode がサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ShouldCompress は再圧縮の価値があるサイズかどうかを判定します。
func ShouldCompress(data []byte) bool {
	return len(data) > CompressThresholdBytes
}

// ToDataURI はバイト列をインライン画像参照（data: URI）に変換します。
func ToDataURI(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
