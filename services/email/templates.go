package email

const ReceiptEmailTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Subscription Confirmed</title>
</head>
<body style="margin:0;padding:0;background-color:#f4f4f4;font-family:Arial,Helvetica,sans-serif;">
    <table width="100%%" cellpadding="0" cellspacing="0" style="max-width:600px;margin:0 auto;background:#ffffff;">
        <tr>
            <td style="padding:32px;background:#111111;text-align:center;">
                <span style="color:#ffffff;font-size:24px;letter-spacing:4px;">JUST URBANE</span>
            </td>
        </tr>
        <tr>
            <td style="padding:32px;">
                <h2 style="margin-top:0;">Hi %s,</h2>
                <p>Your payment was verified and your subscription is now active.</p>
                <table cellpadding="8" style="border:1px solid #e0e0e0;width:100%%;">
                    <tr>
                        <td style="color:#666;">Plan</td>
                        <td style="text-align:right;">%s</td>
                    </tr>
                    <tr>
                        <td style="color:#666;">Amount paid</td>
                        <td style="text-align:right;">%s</td>
                    </tr>
                </table>
                <p>If your plan includes digital access, the full magazine
                library is already unlocked on your account.</p>
                <p style="color:#999;font-size:12px;">If you did not make this
                purchase, reply to this email and our support team will help.</p>
            </td>
        </tr>
    </table>
</body>
</html>
`
