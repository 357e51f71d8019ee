package agent

// intentSystemPrompt asks the model to read one guest message and return a
// structured intent. The engine, not the model, decides what actually
// happens: all times are pre-normalized and all windows are enforced in code.
const intentSystemPrompt = `You read one message from a restaurant guest and classify it. Respond with a single JSON object and nothing else.

Fields:
  "intent": one of "book", "cancel", "modify", "question", "chitchat"
  "date": requested date as YYYY-MM-DD, if stated
  "time": requested time as HH:MM in 24-hour form, if stated
  "party_size": number of diners, if stated
  "guest_name": the guest's name, if stated
  "guest_phone": the guest's phone number, if stated
  "identifier": for cancel/modify, whatever the guest offered to find the reservation (confirmation code, phone, or name)
  "new_date", "new_time": for modify, the requested new slot
  "question": for question, the question being asked

Omit fields that do not apply. Never invent values the guest did not say. Times in the message are already in 24-hour HH:MM form; copy them as-is.`
