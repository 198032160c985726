package exchange

import (
	"encoding/xml"
	"fmt"
)

// ServerVersion 要求で宣言するサーバーバージョン
const ServerVersion = "Exchange2010_SP2"

// GetFolderRequest メールボックスの既定フォルダを取得する要求
type GetFolderRequest struct {
	Mailbox  string
	FolderID string
}

// NewGetFolderRequest メールボックスの予定表フォルダを取得する要求を作成
func NewGetFolderRequest(mailbox string) *GetFolderRequest {
	return &GetFolderRequest{Mailbox: mailbox, FolderID: "calendar"}
}

type getFolderEnvelope struct {
	XMLName  xml.Name `xml:"soap:Envelope"`
	Soap     string   `xml:"xmlns:soap,attr"`
	Types    string   `xml:"xmlns:t,attr"`
	Messages string   `xml:"xmlns:m,attr"`
	Header   struct {
		Version struct {
			Version string `xml:"Version,attr"`
		} `xml:"t:RequestServerVersion"`
	} `xml:"soap:Header"`
	Body struct {
		GetFolder struct {
			BaseShape string `xml:"m:FolderShape>t:BaseShape"`
			FolderID  struct {
				ID      string `xml:"Id,attr"`
				Mailbox string `xml:"t:Mailbox>t:EmailAddress,omitempty"`
			} `xml:"m:FolderIds>t:DistinguishedFolderId"`
		} `xml:"m:GetFolder"`
	} `xml:"soap:Body"`
}

// Envelope 要求をSOAPエンベロープに変換
func (r *GetFolderRequest) Envelope() ([]byte, error) {
	env := getFolderEnvelope{Soap: NamespaceSoap, Types: NamespaceTypes, Messages: NamespaceMessages}
	env.Header.Version.Version = ServerVersion
	env.Body.GetFolder.BaseShape = "IdOnly"
	env.Body.GetFolder.FolderID.ID = r.FolderID
	env.Body.GetFolder.FolderID.Mailbox = r.Mailbox

	body, err := xml.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GetFolder request: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// Folder フォルダの識別子
type Folder struct {
	ID        string
	ChangeKey string
}

type getFolderResponse struct {
	XMLName  xml.Name `xml:"GetFolderResponse"`
	Messages []struct {
		ResponseClass string `xml:"ResponseClass,attr"`
		MessageText   string `xml:"MessageText"`
		ResponseCode  string `xml:"ResponseCode"`
		FolderID      struct {
			ID        string `xml:"Id,attr"`
			ChangeKey string `xml:"ChangeKey,attr"`
		} `xml:"Folders>CalendarFolder>FolderId"`
	} `xml:"ResponseMessages>GetFolderResponseMessage"`
}

// ParseGetFolderResponse GetFolderの応答からフォルダを取り出す
func ParseGetFolderResponse(resp *Response) (*Folder, error) {
	var parsed getFolderResponse
	if err := resp.Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Messages) == 0 {
		return nil, fmt.Errorf("%w: no GetFolderResponseMessage", ErrInvalidResponse)
	}

	msg := parsed.Messages[0]
	if msg.ResponseClass != "Success" {
		return nil, fmt.Errorf("GetFolder failed: %s (%s)", msg.MessageText, msg.ResponseCode)
	}
	return &Folder{ID: msg.FolderID.ID, ChangeKey: msg.FolderID.ChangeKey}, nil
}
